package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/restock/pkg/config"
	"github.com/dmitrymomot/restock/pkg/email"
	"github.com/dmitrymomot/restock/pkg/environment"
	"github.com/dmitrymomot/restock/pkg/httpserver"
	"github.com/dmitrymomot/restock/pkg/logger"
	"github.com/dmitrymomot/restock/pkg/mongo"
	"github.com/dmitrymomot/restock/pkg/pg"
	"github.com/dmitrymomot/restock/pkg/ratelimiter"
	"github.com/dmitrymomot/restock/pkg/redis"
	"github.com/dmitrymomot/restock/pkg/requestid"
)

const (
	storageMemory   = "memory"
	storageMongo    = "mongo"
	storagePostgres = "postgres"

	rateLimitMemory = "memory"
	rateLimitRedis  = "redis"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Name     string `env:"APP_NAME" envDefault:"restock"`
	LogLevel string `env:"LOG_LEVEL"`

	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"memory"`
	RateLimitStore string `env:"RATE_LIMIT_STORE" envDefault:"memory"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"restock"`

	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`
	CASRetries       int           `env:"STORE_CAS_RETRIES" envDefault:"5"`
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"3s"`

	HTTP      httpserver.Config
	Mongo     mongo.Config
	Postgres  pg.Config
	Redis     redis.Config
	Email     email.Config
	LoginRate ratelimiter.Config
}

func loadConfig() (appConfig, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return cfg, err
	}
	switch cfg.StorageDriver {
	case storageMemory, storageMongo, storagePostgres:
	default:
		return cfg, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	switch cfg.RateLimitStore {
	case rateLimitMemory, rateLimitRedis:
	default:
		return cfg, fmt.Errorf("unknown RATE_LIMIT_STORE %q", cfg.RateLimitStore)
	}
	return cfg, nil
}

func (c appConfig) environment() environment.Environment {
	return environment.Parse(c.Env)
}

func newLogger(cfg appConfig) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.environment(), cfg.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	}
	return logger.New(opts...)
}
