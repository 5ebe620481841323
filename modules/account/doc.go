// Package account serves the token lifecycle endpoints under /auth and
// provides the bearer guard used by every protected route.
package account
