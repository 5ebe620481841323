// Package ratelimiter implements a token bucket limiter with in-memory and
// Redis-backed stores. It guards the login endpoint against credential
// stuffing.
package ratelimiter
