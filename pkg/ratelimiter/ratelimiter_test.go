package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restock/pkg/ratelimiter"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(t *testing.T) (*ratelimiter.MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clock.Now), ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)
	return store, clock
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}.Validate())
	assert.ErrorIs(t, ratelimiter.Config{RefillRate: 1, RefillInterval: time.Second}.Validate(), ratelimiter.ErrInvalidConfig)
	assert.ErrorIs(t, ratelimiter.Config{Capacity: 1, RefillInterval: time.Second}.Validate(), ratelimiter.ErrInvalidConfig)
	assert.ErrorIs(t, ratelimiter.Config{Capacity: 1, RefillRate: 1}.Validate(), ratelimiter.ErrInvalidConfig)
}

func TestMemoryStore_ConsumeTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := ratelimiter.Config{Capacity: 10, RefillRate: 2, RefillInterval: time.Second}

	t.Run("new bucket starts full", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)
		remaining, resetAt, err := store.ConsumeTokens(ctx, "k", 3, cfg)
		require.NoError(t, err)
		assert.Equal(t, 7, remaining)
		assert.False(t, resetAt.IsZero())
	})

	t.Run("denied request does not consume", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)
		_, _, err := store.ConsumeTokens(ctx, "k", 8, cfg)
		require.NoError(t, err)

		remaining, _, err := store.ConsumeTokens(ctx, "k", 5, cfg)
		require.NoError(t, err)
		assert.Equal(t, -3, remaining)

		remaining, _, err = store.ConsumeTokens(ctx, "k", 2, cfg)
		require.NoError(t, err)
		assert.Equal(t, 0, remaining)
	})

	t.Run("refills per interval up to capacity", func(t *testing.T) {
		t.Parallel()
		store, clock := newStore(t)
		_, _, err := store.ConsumeTokens(ctx, "k", 10, cfg)
		require.NoError(t, err)

		clock.Advance(2 * time.Second)
		remaining, _, err := store.ConsumeTokens(ctx, "k", 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 4, remaining)

		clock.Advance(time.Hour)
		remaining, _, err = store.ConsumeTokens(ctx, "k", 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 10, remaining)
	})

	t.Run("reset restores capacity", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)
		_, _, err := store.ConsumeTokens(ctx, "k", 10, cfg)
		require.NoError(t, err)
		require.NoError(t, store.Reset(ctx, "k"))

		remaining, _, err := store.ConsumeTokens(ctx, "k", 1, cfg)
		require.NoError(t, err)
		assert.Equal(t, 9, remaining)
	})
}

func TestBucket(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)

	_, err := ratelimiter.NewBucket(store, ratelimiter.Config{})
	require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)

	b, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})
	require.NoError(t, err)

	_, err = b.AllowN(context.Background(), "k", 0)
	require.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)

	res, err := b.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 1, res.Remaining)
	assert.Zero(t, res.RetryAfter())

	status, err := b.Status(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 1, status.Remaining)
}

func TestComposite(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	assert.Equal(t, "10.0.0.1", ratelimiter.ByRemoteIP(req))
	assert.Equal(t, "10.0.0.1:/auth/login", ratelimiter.Composite(ratelimiter.ByRemoteIP, ratelimiter.ByPath)(req))

	long := ratelimiter.Composite(func(*http.Request) string { return strings.Repeat("x", 100) })(req)
	assert.LessOrEqual(t, len(long), 64)
	assert.NotEmpty(t, long)
}

type failingStore struct{}

func (failingStore) ConsumeTokens(context.Context, string, int, ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, ratelimiter.ErrStoreUnavailable
}

func (failingStore) Reset(context.Context, string) error { return nil }

func TestMiddleware(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("limits per key", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)
		b, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})
		require.NoError(t, err)

		limited := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"result":false}`))
		})
		h := ratelimiter.Middleware(b, ratelimiter.ByRemoteIP, limited, nil)(ok)

		do := func(addr string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		assert.Equal(t, http.StatusOK, do("1.1.1.1:1").Code)
		rec := do("1.1.1.1:2")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = do("1.1.1.1:3")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, `{"result":false}`, rec.Body.String())
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		assert.Equal(t, http.StatusOK, do("2.2.2.2:1").Code)
	})

	t.Run("store error goes to error handler", func(t *testing.T) {
		t.Parallel()
		b, err := ratelimiter.NewBucket(failingStore{}, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
		require.NoError(t, err)

		var got error
		h := ratelimiter.Middleware(b, ratelimiter.ByRemoteIP, nil, func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusServiceUnavailable)
		})(ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.True(t, errors.Is(got, ratelimiter.ErrStoreUnavailable))
	})
}
