package main

import (
	"context"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/restock/pkg/mongo"
	"github.com/dmitrymomot/restock/pkg/pg"
	"github.com/dmitrymomot/restock/storage/mongodb"
	"github.com/dmitrymomot/restock/storage/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema for the configured storage driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := migrate(cmd.Context(), cfg, newLogger(cfg)); err != nil {
				return err
			}
			color.Green("schema is up to date (%s)", cfg.StorageDriver)
			return nil
		},
	}
}

func migrate(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	switch cfg.StorageDriver {
	case storagePostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()
		return pg.Migrate(ctx, pool, cfg.Postgres, postgres.Migrations, postgres.MigrationsDir, log)

	case storageMongo:
		client, err := mongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.WithoutCancel(ctx)) }()
		return mongodb.New(client.Database(cfg.Mongo.Database)).EnsureIndexes(ctx)
	}

	log.InfoContext(ctx, "nothing to migrate", slog.String("driver", cfg.StorageDriver))
	return nil
}
