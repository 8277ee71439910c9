package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// ConnectNATS opens the broker connection used for domain events. An empty URL returns a nil
// connection and events are dropped.
func ConnectNATS(url, name string, logger zerolog.Logger) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}

	log := logger.With().Str("component", "nats").Logger()
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}

	return conn, nil
}

// PingNATS reports whether the broker connection is usable.
func PingNATS(conn *nats.Conn) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if !conn.IsConnected() {
			return fmt.Errorf("nats status %s", conn.Status())
		}
		return nil
	}
}
