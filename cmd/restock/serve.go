package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/restock/handler"
	"github.com/dmitrymomot/restock/modules/account"
	"github.com/dmitrymomot/restock/modules/product"
	"github.com/dmitrymomot/restock/pkg/email"
	"github.com/dmitrymomot/restock/pkg/environment"
	"github.com/dmitrymomot/restock/pkg/httpserver"
	"github.com/dmitrymomot/restock/pkg/jwt"
	"github.com/dmitrymomot/restock/pkg/logger"
	"github.com/dmitrymomot/restock/pkg/metrics"
	"github.com/dmitrymomot/restock/pkg/ratelimiter"
	"github.com/dmitrymomot/restock/pkg/redis"
	"github.com/dmitrymomot/restock/pkg/requestid"
	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

var (
	errMissingJWTSecret   = errors.New("JWT_SECRET is required")
	errMemoryInProduction = errors.New("memory storage cannot be used in production")
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, newLogger(cfg))
		},
	}
}

func serve(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return errMissingJWTSecret
	}
	if cfg.environment().IsProduction() && cfg.StorageDriver == storageMemory {
		return errMemoryInProduction
	}
	if ctx == nil {
		ctx = context.Background()
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.close()

	limiter, limiterChecks, closeLimiter, err := newLoginLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	sender, err := email.New(cfg.Email, log)
	if err != nil {
		return err
	}

	signer, err := jwt.NewFromString(cfg.JWTSecret, jwt.WithTTL(cfg.JWTTTL), jwt.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		return err
	}

	m := metrics.New()
	authority := auth.NewAuthority(be.store, signer,
		auth.WithLogger(log),
		auth.WithRecorder(m),
		auth.WithBcryptCost(cfg.BcryptCost),
		auth.WithRetries(cfg.CASRetries),
	)
	engine := catalog.NewEngine(be.store, be.store, catalog.NewEmailNotifier(sender),
		catalog.WithLogger(log),
		catalog.WithRecorder(m),
		catalog.WithRetries(cfg.CASRetries),
		catalog.WithNotifyTimeout(cfg.NotifyTimeout),
	)

	userGuard := account.Guard(auth.UserPipeline(signer, authority), log)
	adminGuard := account.Guard(auth.AdminPipeline(signer, authority), log)

	accounts := account.NewService(authority, userGuard,
		account.WithLogger(log),
		account.WithLoginLimiter(limiter),
	)
	products := product.NewService(engine, userGuard, adminGuard, product.WithLogger(log))

	router := newRouter(cfg, log, m, readinessChecks(be.checks, limiterChecks), accounts, products)

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}

// readinessChecks returns a fresh slice; neither input is modified.
func readinessChecks(groups ...[]httpserver.Check) []httpserver.Check {
	return slices.Concat(groups...)
}

type mountable interface {
	Handle() http.Handler
}

func newRouter(cfg appConfig, log *slog.Logger, m *metrics.Metrics, checks []httpserver.Check, accounts, products mountable) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		requestid.Middleware,
		environment.Middleware(cfg.environment()),
		logger.RequestLogger(log),
		m.Middleware,
		middleware.Recoverer,
	)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, cfg.ReadinessTimeout, checks...))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Mount("/auth", accounts.Handle())
	r.Mount("/product", products.Handle())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = handler.Fail(http.StatusNotFound, "Not Found").Render(w, r)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = handler.Fail(http.StatusMethodNotAllowed, "Method Not Allowed").Render(w, r)
	})
	return r
}

// newLoginLimiter builds the per-IP login throttle on the configured store.
func newLoginLimiter(ctx context.Context, cfg appConfig, log *slog.Logger) (func(http.Handler) http.Handler, []httpserver.Check, func(), error) {
	var (
		store  ratelimiter.Store
		checks []httpserver.Check
		closer func()
	)

	switch cfg.RateLimitStore {
	case rateLimitRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		store = ratelimiter.NewRedisStore(client, "restock:login:")
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
		closer = func() {
			if err := client.Close(); err != nil {
				log.Error("redis close failed", logger.Error(err))
			}
		}
	default:
		ms := ratelimiter.NewMemoryStore()
		store = ms
		closer = ms.Close
	}

	bucket, err := ratelimiter.NewBucket(store, cfg.LoginRate)
	if err != nil {
		closer()
		return nil, nil, nil, err
	}

	onError := func(w http.ResponseWriter, r *http.Request, err error) {
		handler.RenderError(w, r, log, err)
	}
	keyFn := ratelimiter.Composite(ratelimiter.ByRemoteIP, ratelimiter.ByPath)
	mw := ratelimiter.Middleware(bucket, keyFn, account.TooManyAttempts(), onError)
	return mw, checks, closer, nil
}
