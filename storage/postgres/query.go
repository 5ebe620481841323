package postgres

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/restock/svc/catalog"
)

const productColumns = "id, name, description, attributes, price, stock, subscribers, created_at, updated_at, version"

// productQuery builds the SELECT for a catalog filter. Text uses the
// case-insensitive pattern from Filter.TextPattern against name, description
// and every attribute value.
func productQuery(f catalog.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if pattern := f.TextPattern(); pattern != "" {
		p := arg(pattern)
		where = append(where, fmt.Sprintf(
			"(name ~ %[1]s OR description ~ %[1]s OR EXISTS (SELECT 1 FROM jsonb_each_text(attributes) AS a WHERE a.value ~ %[1]s))", p))
	}
	if f.PriceMin != nil {
		where = append(where, "price >= "+arg(*f.PriceMin))
	}
	if f.PriceMax != nil {
		where = append(where, "price <= "+arg(*f.PriceMax))
	}
	switch f.Stock {
	case catalog.StockZero:
		where = append(where, "stock = 0")
	case catalog.StockPositive:
		where = append(where, "stock > 0")
	}

	q := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q + " ORDER BY created_at, id", args
}
