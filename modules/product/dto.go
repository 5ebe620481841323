package product

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrymomot/restock/svc/catalog"
)

type ListRequest struct {
	Find      string   `query:"find"`
	PriceFrom *float64 `query:"priceFrom"`
	PriceTo   *float64 `query:"priceTo"`
	InStock   string   `query:"inStock"`
}

func (r *ListRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PriceFrom, validation.Min(0.0)),
		validation.Field(&r.PriceTo, validation.Min(0.0)),
		validation.Field(&r.InStock, validation.In("true", "false", "both")),
	)
}

func (r ListRequest) filter() catalog.Filter {
	stock, _ := catalog.ParseStockPredicate(r.InStock)
	return catalog.Filter{
		Text:     r.Find,
		PriceMin: r.PriceFrom,
		PriceMax: r.PriceTo,
		Stock:    stock,
	}
}

type IDRequest struct {
	ID string `path:"id"`
}

type CreateRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes"`
	Price       float64           `json:"price"`
	Stock       *int              `json:"stock"`
}

func (r *CreateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Price, validation.Min(0.0)),
		validation.Field(&r.Stock, validation.Min(0)),
	)
}

type UpdateRequest struct {
	ID          string            `path:"id" json:"-"`
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Attributes  map[string]string `json:"attributes"`
	Price       *float64          `json:"price"`
	Stock       *int              `json:"stock"`
}

func (r *UpdateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.NilOrNotEmpty),
		validation.Field(&r.Price, validation.Min(0.0)),
		validation.Field(&r.Stock, validation.Min(0)),
	)
}

type SubscribeRequest struct {
	ID  string `path:"id" json:"-"`
	Qty int    `json:"qty"`
}

func (r *SubscribeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Qty, validation.Required, validation.Min(1)),
	)
}

// Response is the public view of a product. Waiting-list emails stay
// private; only their count is shown.
type Response struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes"`
	Price       float64           `json:"price"`
	Stock       int               `json:"stock"`
	Waiting     int               `json:"waiting"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func newResponse(p *catalog.Product) Response {
	attrs := p.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return Response{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Attributes:  attrs,
		Price:       p.Price,
		Stock:       p.Stock,
		Waiting:     len(p.Subscribers),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type UpdateResponse struct {
	Product              Response             `json:"product"`
	Fulfilled            []catalog.Subscriber `json:"fulfilled"`
	NotificationFailures int                  `json:"notificationFailures"`
}

type CreateResponse struct {
	ID string `json:"id"`
}

type SubscribeResponse struct {
	Outcome string `json:"outcome"`
}
