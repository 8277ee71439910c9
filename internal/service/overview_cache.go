package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/dto"
	"github.com/noah-isme/leadership-assessment-api/internal/observability"
)

// OverviewCache keeps the per-user results overview in Redis. Every write that changes a
// user's results or feedback invalidates the entry, so the TTL only bounds memory.
//
// Invalidate also bumps a per-user generation. Readers capture the generation before loading
// and Set stores only if it is unchanged, so an overview built from a snapshot taken before a
// concurrent write is served once but never cached.
type OverviewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewOverviewCache returns a cache; a nil client disables caching.
func NewOverviewCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *OverviewCache {
	return &OverviewCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "overview_cache").Logger(),
	}
}

// generationTTL outlives any request that could still hold an old generation.
const generationTTL = 24 * time.Hour

var errStaleOverview = errors.New("overview generation changed")

func overviewKey(userID uint) string {
	return fmt.Sprintf("results:overview:%d", userID)
}

func generationKey(userID uint) string {
	return fmt.Sprintf("results:overview:%d:gen", userID)
}

func (c *OverviewCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached overview, if any.
func (c *OverviewCache) Get(ctx context.Context, userID uint) (dto.ResultsOverviewResponse, bool) {
	if !c.enabled() {
		return dto.ResultsOverviewResponse{}, false
	}

	cached, err := c.client.Get(ctx, overviewKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to read overview cache")
		}
		observability.OverviewCacheLookups().WithLabelValues("miss").Inc()
		return dto.ResultsOverviewResponse{}, false
	}

	var response dto.ResultsOverviewResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		c.logger.Warn().Err(err).Uint("user_id", userID).Msg("discarding corrupt overview cache entry")
		observability.OverviewCacheLookups().WithLabelValues("miss").Inc()
		return dto.ResultsOverviewResponse{}, false
	}

	observability.OverviewCacheLookups().WithLabelValues("hit").Inc()
	return response, true
}

// Generation returns the user's current cache generation. Callers read it before loading the
// data they intend to Set. An error means the result must not be cached.
func (c *OverviewCache) Generation(ctx context.Context, userID uint) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	generation, err := c.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to read overview generation")
		return 0, err
	}
	return generation, nil
}

// Set stores an overview built after Generation returned generation. The write is skipped when
// an Invalidate happened in between, including one racing the write itself.
func (c *OverviewCache) Set(ctx context.Context, userID uint, generation int64, response dto.ResultsOverviewResponse) {
	if !c.enabled() {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	genKey := generationKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleOverview
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, overviewKey(userID), payload, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleOverview), errors.Is(err, redis.TxFailedErr):
		observability.OverviewCacheLookups().WithLabelValues("stale").Inc()
	default:
		c.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to store overview cache")
	}
}

// Invalidate drops a user's cached overview and starts a new generation.
func (c *OverviewCache) Invalidate(ctx context.Context, userID uint) {
	if !c.enabled() {
		return
	}
	genKey := generationKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, overviewKey(userID))
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate overview cache")
	}
}
