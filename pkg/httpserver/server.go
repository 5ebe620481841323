package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/restock/pkg/logger"
)

var (
	ErrStart    = errors.New("httpserver: failed to start")
	ErrShutdown = errors.New("httpserver: graceful shutdown failed")
)

type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

type Server struct {
	cfg      Config
	log      *slog.Logger
	listener net.Listener

	mu       sync.Mutex
	srv      *http.Server
	stopOnce sync.Once
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithListener serves on ln instead of listening on cfg.Addr.
func WithListener(ln net.Listener) Option {
	return func(s *Server) { s.listener = ln }
}

func New(cfg Config, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{cfg: cfg, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("httpserver"))
	return s
}

// Run serves handler until ctx is cancelled or SIGINT/SIGTERM arrives,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already running"))
	}
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelError),
	}
	srv := s.srv
	s.mu.Unlock()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if s.listener != nil {
			s.log.Info("http server started", slog.String("addr", s.listener.Addr().String()))
			errCh <- srv.Serve(s.listener)
			return
		}
		s.log.Info("http server started", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		if serr := s.Shutdown(context.WithoutCancel(ctx)); serr != nil {
			return serr
		}
		err = <-errCh
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrStart, err)
	}
	return nil
}

// Shutdown drains in-flight requests within ShutdownTimeout. Repeated calls
// are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv == nil {
			return
		}

		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
		s.log.Info("http server stopped")
	})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
