package mongodb

import (
	"maps"
	"slices"
	"time"

	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Roles        []string  `bson:"roles"`
	Active       bool      `bson:"active"`
	Confirmed    bool      `bson:"confirmed"`
	Token        string    `bson:"token,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	Version      int64     `bson:"version"`
}

func toUserDoc(u *auth.User) userDoc {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userDoc{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        slices.Clone(roles),
		Active:       u.Active,
		Confirmed:    u.Confirmed,
		Token:        u.Token,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		Version:      u.Version,
	}
}

func (d userDoc) user() *auth.User {
	return &auth.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Roles:        d.Roles,
		Active:       d.Active,
		Confirmed:    d.Confirmed,
		Token:        d.Token,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		Version:      d.Version,
	}
}

type subscriberDoc struct {
	Email string `bson:"email"`
	Qty   int    `bson:"qty"`
}

type productDoc struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Description string            `bson:"description"`
	Attributes  map[string]string `bson:"attributes"`
	Price       float64           `bson:"price"`
	Stock       int               `bson:"stock"`
	Subscribers []subscriberDoc   `bson:"subscribers"`
	CreatedAt   time.Time         `bson:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at"`
	Version     int64             `bson:"version"`
}

func toProductDoc(p *catalog.Product) productDoc {
	subs := make([]subscriberDoc, 0, len(p.Subscribers))
	for _, s := range p.Subscribers {
		subs = append(subs, subscriberDoc{Email: s.Email, Qty: s.Qty})
	}
	attrs := maps.Clone(p.Attributes)
	if attrs == nil {
		attrs = map[string]string{}
	}
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Attributes:  attrs,
		Price:       p.Price,
		Stock:       p.Stock,
		Subscribers: subs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

func (d productDoc) product() *catalog.Product {
	subs := make([]catalog.Subscriber, 0, len(d.Subscribers))
	for _, s := range d.Subscribers {
		subs = append(subs, catalog.Subscriber{Email: s.Email, Qty: s.Qty})
	}
	attrs := d.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &catalog.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Attributes:  attrs,
		Price:       d.Price,
		Stock:       d.Stock,
		Subscribers: subs,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Version:     d.Version,
	}
}
