package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restock/pkg/httpserver"
)

func TestServer_RunAndStop(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := httpserver.New(httpserver.Config{ShutdownTimeout: time.Second}, httpserver.WithListener(ln))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pong"))
		}))
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestServer_ShutdownBeforeRun(t *testing.T) {
	t.Parallel()
	assert.NoError(t, httpserver.New(httpserver.Config{}).Shutdown(context.Background()))
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		httpserver.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ALIVE", rec.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h := httpserver.ReadinessHandler(nil, time.Second, httpserver.Check{
			Name: "ok", Fn: func(context.Context) error { return nil },
		})
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "READY", rec.Body.String())
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h := httpserver.ReadinessHandler(nil, time.Second,
			httpserver.Check{Name: "ok", Fn: func(context.Context) error { return nil }},
			httpserver.Check{Name: "db", Fn: func(context.Context) error { return errors.New("down") }},
		)
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "NOT_READY", rec.Body.String())
	})
}
