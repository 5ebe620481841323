package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/restock/pkg/logger"
)

// Migrate applies every pending goose migration found at dir inside fsys.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, fsys fs.FS, dir string, log *slog.Logger) error {
	if fsys == nil {
		return errors.Join(ErrMigrationFailed, errors.New("migrations filesystem is nil"))
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration connection", logger.Error(err))
		}
	}()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: log})
	goose.SetTableName(cfg.MigrationsTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...), logger.Component("migrate"))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...), logger.Component("migrate"))
}
