// Package postgres stores users and products in PostgreSQL. Attributes and
// waiting lists live in jsonb columns; updates are guarded by the version
// column.
package postgres
