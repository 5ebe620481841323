package postgres

import "embed"

// Migrations holds the goose migrations; pass it to pg.Migrate with
// MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
