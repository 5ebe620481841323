package redis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restock/pkg/redis"
)

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost:6379"})
	require.ErrorIs(t, err, redis.ErrInvalidURL)
}
