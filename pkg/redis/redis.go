package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidURL        = errors.New("redis: invalid connection url")
	ErrNotReady          = errors.New("redis: not ready")
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Connect parses cfg.ConnectionURL and pings until the server answers or
// the attempts are exhausted.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client := redis.NewClient(opts)
	var lastErr error
	for attempt := range max(cfg.RetryAttempts, 1) {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, errors.Join(ErrNotReady, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
	}

	_ = client.Close()
	return nil, errors.Join(ErrNotReady, lastErr)
}

func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
