package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restock/handler"
	"github.com/dmitrymomot/restock/pkg/httpserver"
	"github.com/dmitrymomot/restock/pkg/logger"
	"github.com/dmitrymomot/restock/pkg/metrics"
	"github.com/dmitrymomot/restock/storage/memory"
	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

type stubModule string

func (s stubModule) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(s))
	})
	return r
}

func testRouter(checks ...httpserver.Check) http.Handler {
	cfg := appConfig{Env: "development", ReadinessTimeout: time.Second}
	return newRouter(cfg, logger.Discard(), metrics.New(), checks, stubModule("accounts"), stubModule("products"))
}

func TestRouter(t *testing.T) {
	t.Parallel()

	do := func(h http.Handler, method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	t.Run("mounts modules", func(t *testing.T) {
		t.Parallel()
		h := testRouter()
		assert.Equal(t, "accounts", do(h, http.MethodGet, "/auth").Body.String())
		assert.Equal(t, "products", do(h, http.MethodGet, "/product").Body.String())
	})

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		rec := do(testRouter(), http.MethodGet, "/health/live")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ALIVE", rec.Body.String())
	})

	t.Run("readiness reports failing check", func(t *testing.T) {
		t.Parallel()
		h := testRouter(httpserver.Check{Name: "db", Fn: func(context.Context) error { return errors.New("down") }})
		rec := do(h, http.MethodGet, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "NOT_READY", rec.Body.String())
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		t.Parallel()
		h := testRouter()
		do(h, http.MethodGet, "/health/live")
		rec := do(h, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "restock_http_requests_total")
	})

	t.Run("unknown route renders envelope", func(t *testing.T) {
		t.Parallel()
		rec := do(testRouter(), http.MethodGet, "/nope")
		require.Equal(t, http.StatusNotFound, rec.Code)

		var env handler.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.False(t, env.Result)
		assert.Equal(t, "Not Found", env.Message)
	})

	t.Run("wrong method renders envelope", func(t *testing.T) {
		t.Parallel()
		rec := do(testRouter(), http.MethodPost, "/health/live")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, rec.Body.String(), `"result":false`)
	})
}

func TestReadinessChecksDoNotAlias(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	storage := make([]httpserver.Check, 1, 4)
	storage[0] = httpserver.Check{Name: "postgres", Fn: ok}
	limiter := []httpserver.Check{{Name: "redis", Fn: ok}}

	combined := readinessChecks(storage, limiter)
	require.Len(t, combined, 2)
	assert.Equal(t, "postgres", combined[0].Name)
	assert.Equal(t, "redis", combined[1].Name)

	combined[0].Name = "changed"
	assert.Equal(t, "postgres", storage[0].Name)
	assert.Len(t, storage, 1)
	assert.Empty(t, storage[:2][1].Name, "spare capacity of the input stays untouched")
}

const seedYAML = `
users:
  - email: Admin@Example.com
    password: secret123
    roles: [admin]
  - email: shopper@example.com
    password: secret123
products:
  - name: Desk lamp
    description: brass
    attributes:
      color: black
    price: 19.5
    stock: 0
  - name: Mug
    price: 4
`

func TestParseSeed(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()
		data, err := parseSeed(strings.NewReader(seedYAML))
		require.NoError(t, err)
		require.Len(t, data.Users, 2)
		require.Len(t, data.Products, 2)

		assert.Equal(t, []string{"admin"}, data.Users[0].Roles)
		assert.Equal(t, "black", data.Products[0].Attributes["color"])
		require.NotNil(t, data.Products[0].Stock)
		assert.Equal(t, 0, *data.Products[0].Stock)
		assert.Nil(t, data.Products[1].Stock)
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		data, err := parseSeed(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, data.Users)
		assert.Empty(t, data.Products)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := parseSeed(strings.NewReader("customers: []\n"))
		assert.Error(t, err)
	})
}

func TestApplySeed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	authority := auth.NewAuthority(store, nil, auth.WithBcryptCost(4))
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	engine := catalog.NewEngine(store, store, nil, catalog.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))

	data, err := parseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	res, err := applySeed(ctx, data, authority, engine)
	require.NoError(t, err)
	assert.Equal(t, seedResult{Users: 2, Products: 2}, res)

	admin, err := store.UserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{auth.RoleAdmin}, admin.Roles)

	products, err := engine.List(ctx, catalog.Filter{})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 0, products[0].Stock)
	assert.Equal(t, 1, products[1].Stock)

	t.Run("second run skips existing users", func(t *testing.T) {
		res, err := applySeed(ctx, &seedData{Users: data.Users}, authority, engine)
		require.NoError(t, err)
		assert.Equal(t, seedResult{SkippedUsers: 2}, res)
	})

	t.Run("invalid product stops the run", func(t *testing.T) {
		_, err := applySeed(ctx, &seedData{Products: []seedProduct{{Name: " "}}}, authority, engine)
		assert.Error(t, err)
	})
}
