package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidConfig     = errors.New("ratelimiter: invalid configuration")
	ErrInvalidTokenCount = errors.New("ratelimiter: invalid token count")
	ErrStoreUnavailable  = errors.New("ratelimiter: store unavailable")
)

// Config describes one bucket: Capacity tokens, topped up by RefillRate
// every RefillInterval.
type Config struct {
	Capacity       int           `env:"LOGIN_RATE_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"LOGIN_RATE_REFILL" envDefault:"1"`
	RefillInterval time.Duration `env:"LOGIN_RATE_INTERVAL" envDefault:"6s"`
}

func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Store keeps bucket state. ConsumeTokens takes tokens only when enough are
// available; a negative remaining value means the request was denied and
// nothing was taken.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (r Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter is zero for allowed requests.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

type Bucket struct {
	store Store
	cfg   Config
}

func NewBucket(store Store, cfg Config) (*Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", ErrInvalidConfig)
	}
	return &Bucket{store: store, cfg: cfg}, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (Result, error) {
	return b.AllowN(ctx, key, 1)
}

func (b *Bucket) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}
	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Limit: b.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}

// Status reports the bucket without consuming.
func (b *Bucket) Status(ctx context.Context, key string) (Result, error) {
	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, 0, b.cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Limit: b.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}

func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}
