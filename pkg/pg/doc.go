// Package pg manages the PostgreSQL connection pool and schema migrations.
package pg
