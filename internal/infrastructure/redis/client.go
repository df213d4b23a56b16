package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultConnectTimeout = 10 * time.Second

// Option configures NewClient.
type Option func(*options)

type options struct {
	connectTimeout time.Duration
}

// WithConnectTimeout bounds how long NewClient keeps retrying the first ping.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connectTimeout = d }
}

// NewClient creates a new Redis client and waits until it answers PING.
func NewClient(ctx context.Context, redisURL string, logger zerolog.Logger, opts ...Option) (*redis.Client, error) {
	o := options{connectTimeout: defaultConnectTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(redisOpts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = o.connectTimeout

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Debug().Err(err).Int("attempt", attempt).Msg("redis not ready")
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().Str("addr", redisOpts.Addr).Int("db", redisOpts.DB).Int("attempts", attempt).Msg("connected to redis")
	return client, nil
}
