package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restock/pkg/environment"
	"github.com/dmitrymomot/restock/pkg/logger"
)

type ctxKey struct{}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello")

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("production environment adds service attrs", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithEnvironment(environment.Production, "restock"),
			logger.WithOutput(buf),
		)
		log.Debug("dropped")
		log.Info("kept")

		entry := decode(t, buf)
		assert.Equal(t, "restock", entry["service"])
		assert.Equal(t, "production", entry["env"])
	})

	t.Run("context extractors", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
				v, ok := ctx.Value(ctxKey{}).(string)
				return slog.String("trace", v), ok
			}),
		)
		ctx := context.WithValue(context.Background(), ctxKey{}, "t-1")
		log.With(logger.Component("test")).InfoContext(ctx, "hello")

		entry := decode(t, buf)
		assert.Equal(t, "t-1", entry["trace"])
		assert.Equal(t, "test", entry["component"])
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("nope"))
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.True(t, logger.UserID("").Equal(slog.Attr{}))
	assert.True(t, logger.ProductID("").Equal(slog.Attr{}))

	err := errors.New("boom")
	assert.Equal(t, err, logger.Error(err).Value.Any())
	assert.Equal(t, "user_id", logger.UserID("u1").Key)
	assert.Equal(t, "product_id", logger.ProductID("p1").Key)
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(logger.WithOutput(buf))

	h := logger.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/product?find=shoe", nil))

	entry := decode(t, buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/product?find=shoe", entry["url"])
	assert.EqualValues(t, http.StatusNotFound, entry["status"])
	assert.EqualValues(t, 7, entry["bytes"])
}
