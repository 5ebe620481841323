// Package auth is the token authority: it issues, reuses, renews and revokes
// the single bearer token each user may hold, and runs the guard pipeline
// that protects API routes.
package auth
