package catalog

import "context"

// ProductStore persists products. SaveProduct succeeds only when the stored
// Version equals p.Version and then increments both; otherwise it returns
// ErrVersionConflict. DeleteProduct reports whether a product was removed.
type ProductStore interface {
	ProductByID(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	SaveProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) (bool, error)
	QueryProducts(ctx context.Context, f Filter) ([]Product, error)
}

// UserDirectory resolves a requester's email, returning ErrRequesterNotFound
// when the user does not exist.
type UserDirectory interface {
	UserEmail(ctx context.Context, userID string) (string, error)
}

// Notifier tells a subscriber their product is available.
type Notifier interface {
	Notify(ctx context.Context, email, productName string) error
}

type Recorder interface {
	Subscription(outcome string)
	Fulfilled(n int)
	NotificationFailed(n int)
	VersionConflict(entity string)
}

type nopRecorder struct{}

func (nopRecorder) Subscription(string)    {}
func (nopRecorder) Fulfilled(int)          {}
func (nopRecorder) NotificationFailed(int) {}
func (nopRecorder) VersionConflict(string) {}
