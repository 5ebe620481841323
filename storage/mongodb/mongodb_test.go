package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

func TestProductFilter(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, bson.M{}, productFilter(catalog.Filter{}))
	})

	t.Run("price and stock", func(t *testing.T) {
		t.Parallel()
		lo, hi := 5.0, 10.0
		got := productFilter(catalog.Filter{PriceMin: &lo, PriceMax: &hi, Stock: catalog.StockPositive})
		assert.Equal(t, bson.M{"$and": bson.A{
			bson.M{"price": bson.M{"$gte": 5.0, "$lte": 10.0}},
			bson.M{"stock": bson.M{"$gt": 0}},
		}}, got)
	})

	t.Run("zero stock", func(t *testing.T) {
		t.Parallel()
		got := productFilter(catalog.Filter{Stock: catalog.StockZero})
		assert.Equal(t, bson.M{"$and": bson.A{bson.M{"stock": 0}}}, got)
	})

	t.Run("text is escaped and case insensitive", func(t *testing.T) {
		t.Parallel()
		got := productFilter(catalog.Filter{Text: "a+b"})
		and := got["$and"].(bson.A)
		require.Len(t, and, 1)
		or := and[0].(bson.M)["$or"].(bson.A)
		require.Len(t, or, 3)
		assert.Equal(t, bson.M{"name": bson.M{"$regex": `(?i)a\+b`}}, or[0])
		assert.Equal(t, bson.M{"description": bson.M{"$regex": `(?i)a\+b`}}, or[1])
		assert.Contains(t, or[2].(bson.M), "$expr")
	})
}

func TestDocuments(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	t.Run("user keeps empty token out of the document", func(t *testing.T) {
		t.Parallel()
		doc := toUserDoc(&auth.User{ID: "u1", Email: "a@example.com", CreatedAt: now, Version: 2})
		raw, err := bson.Marshal(doc)
		require.NoError(t, err)

		var m bson.M
		require.NoError(t, bson.Unmarshal(raw, &m))
		assert.NotContains(t, m, "token")
		assert.Equal(t, bson.A{}, m["roles"])

		u := doc.user()
		assert.Equal(t, "", u.Token)
		assert.Equal(t, int64(2), u.Version)
	})

	t.Run("product subscribers keep order", func(t *testing.T) {
		t.Parallel()
		p := &catalog.Product{
			ID:          "p1",
			Name:        "Lamp",
			Subscribers: []catalog.Subscriber{{Email: "b@example.com", Qty: 2}, {Email: "a@example.com", Qty: 1}},
			CreatedAt:   now,
		}
		back := toProductDoc(p).product()
		assert.Equal(t, p.Subscribers, back.Subscribers)
		assert.NotNil(t, back.Attributes)
	})
}
