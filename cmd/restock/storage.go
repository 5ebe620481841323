package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/restock/pkg/httpserver"
	"github.com/dmitrymomot/restock/pkg/logger"
	"github.com/dmitrymomot/restock/pkg/mongo"
	"github.com/dmitrymomot/restock/pkg/pg"
	"github.com/dmitrymomot/restock/storage/memory"
	"github.com/dmitrymomot/restock/storage/mongodb"
	"github.com/dmitrymomot/restock/storage/postgres"
	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

type store interface {
	auth.CredentialStore
	catalog.ProductStore
	catalog.UserDirectory
}

type backend struct {
	store  store
	checks []httpserver.Check
	close  func()
}

// openBackend connects the storage selected by STORAGE_DRIVER.
func openBackend(ctx context.Context, cfg appConfig, log *slog.Logger) (*backend, error) {
	switch cfg.StorageDriver {
	case storageMongo:
		client, err := mongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		s := mongodb.New(client.Database(cfg.Mongo.Database))
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, err
		}
		log.InfoContext(ctx, "storage ready", slog.String("driver", storageMongo))
		return &backend{
			store:  s,
			checks: []httpserver.Check{{Name: "mongo", Fn: mongo.Healthcheck(client)}},
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Error("mongo disconnect failed", logger.Error(err))
				}
			},
		}, nil

	case storagePostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		log.InfoContext(ctx, "storage ready", slog.String("driver", storagePostgres))
		return &backend{
			store:  postgres.New(pool),
			checks: []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}},
			close:  pool.Close,
		}, nil

	case storageMemory:
		log.WarnContext(ctx, "using in-memory storage; data is lost on restart")
		return &backend{store: memory.New(), close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
