package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restock/svc/catalog"
)

func TestProductQuery(t *testing.T) {
	t.Parallel()

	t.Run("no filter", func(t *testing.T) {
		t.Parallel()
		q, args := productQuery(catalog.Filter{})
		assert.Equal(t, "SELECT "+productColumns+" FROM products ORDER BY created_at, id", q)
		assert.Empty(t, args)
	})

	t.Run("all conditions", func(t *testing.T) {
		t.Parallel()
		lo, hi := 1.5, 9.0
		q, args := productQuery(catalog.Filter{Text: "50%.off", PriceMin: &lo, PriceMax: &hi, Stock: catalog.StockZero})

		assert.Equal(t, []any{`(?i)50%\.off`, 1.5, 9.0}, args)
		assert.Contains(t, q, "name ~ $1 OR description ~ $1")
		assert.Contains(t, q, "jsonb_each_text(attributes) AS a WHERE a.value ~ $1")
		assert.Contains(t, q, "price >= $2 AND price <= $3 AND stock = 0")
		assert.True(t, strings.HasSuffix(q, " ORDER BY created_at, id"))
	})

	t.Run("positive stock only", func(t *testing.T) {
		t.Parallel()
		q, args := productQuery(catalog.Filter{Stock: catalog.StockPositive})
		assert.Contains(t, q, "WHERE stock > 0")
		assert.Empty(t, args)
	})
}

func TestEncodeProduct(t *testing.T) {
	t.Parallel()

	attrs, subs, err := encodeProduct(&catalog.Product{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(attrs))
	assert.JSONEq(t, `[]`, string(subs))

	_, subs, err = encodeProduct(&catalog.Product{Subscribers: []catalog.Subscriber{{Email: "a@example.com", Qty: 2}}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"email":"a@example.com","qty":2}]`, string(subs))
}

func TestMigrationsEmbedded(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(Migrations, MigrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	body, err := fs.ReadFile(Migrations, files[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS products")

	// stock and version hold 64-bit Go ints
	assert.Regexp(t, `(?m)^\s*stock\s+BIGINT\b`, string(body))
	assert.Regexp(t, `(?m)^\s*version\s+BIGINT\b`, string(body))
}
