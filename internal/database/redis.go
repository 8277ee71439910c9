package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 3 * time.Second

// ConnectRedis opens the client backing the results overview cache. An empty URL returns a
// nil client and the cache is bypassed.
func ConnectRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if options.DialTimeout == 0 || options.DialTimeout > redisDialTimeout {
		options.DialTimeout = redisDialTimeout
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return client, nil
}

// PingRedis is the health probe for the cache.
func PingRedis(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
