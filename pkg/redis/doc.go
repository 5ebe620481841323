// Package redis connects to Redis, used for the shared login rate limiter.
package redis
