package catalog

import (
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"
)

type Subscriber struct {
	Email string `json:"email"`
	Qty   int    `json:"qty"`
}

type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes"`
	Price       float64           `json:"price"`
	Stock       int               `json:"stock"`
	Subscribers []Subscriber      `json:"subscribers"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Version     int64             `json:"-"`
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Attributes = maps.Clone(p.Attributes)
	c.Subscribers = slices.Clone(p.Subscribers)
	return &c
}

// CreateProductInput describes a new product. A nil Stock defaults to 1.
type CreateProductInput struct {
	Name        string
	Description string
	Attributes  map[string]string
	Price       float64
	Stock       *int
}

// ProductPatch changes only the non-nil fields.
type ProductPatch struct {
	Name        *string
	Description *string
	Attributes  map[string]string
	Price       *float64
	Stock       *int
}

func (p ProductPatch) apply(prod *Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Attributes != nil {
		prod.Attributes = maps.Clone(p.Attributes)
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
}

type StockPredicate int

const (
	StockAny StockPredicate = iota
	StockZero
	StockPositive
)

// ParseStockPredicate maps the inStock query value: "true" is positive,
// "false" is zero, "both" or empty is any.
func ParseStockPredicate(s string) (StockPredicate, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return StockAny, true
	case "true":
		return StockPositive, true
	case "false":
		return StockZero, true
	default:
		return StockAny, false
	}
}

func (s StockPredicate) String() string {
	switch s {
	case StockZero:
		return "zero"
	case StockPositive:
		return "positive"
	default:
		return "any"
	}
}

// Filter selects products. Text is a case-insensitive literal substring
// matched against name, description and attribute values.
type Filter struct {
	Text     string
	PriceMin *float64
	PriceMax *float64
	Stock    StockPredicate
}

// TextPattern returns the escaped, case-insensitive regular expression for
// Text, or "" when Text is blank.
func (f Filter) TextPattern() string {
	t := strings.TrimSpace(f.Text)
	if t == "" {
		return ""
	}
	return "(?i)" + regexp.QuoteMeta(t)
}

// Match evaluates the filter in memory.
func (f Filter) Match(p *Product) bool {
	if f.PriceMin != nil && p.Price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && p.Price > *f.PriceMax {
		return false
	}
	switch f.Stock {
	case StockZero:
		if p.Stock != 0 {
			return false
		}
	case StockPositive:
		if p.Stock <= 0 {
			return false
		}
	}

	t := strings.ToLower(strings.TrimSpace(f.Text))
	if t == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), t) || strings.Contains(strings.ToLower(p.Description), t) {
		return true
	}
	for _, v := range p.Attributes {
		if strings.Contains(strings.ToLower(v), t) {
			return true
		}
	}
	return false
}

type SubscribeOutcome int

const (
	NoExistingEntry SubscribeOutcome = iota
	ExistingEntryUpdated
)

func (o SubscribeOutcome) String() string {
	if o == ExistingEntryUpdated {
		return "updated"
	}
	return "created"
}

type UpdateResult struct {
	Product              *Product
	Fulfilled            []Subscriber
	NotificationFailures int
}
