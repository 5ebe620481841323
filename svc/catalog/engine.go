package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/dmitrymomot/restock/pkg/async"
	"github.com/dmitrymomot/restock/pkg/logger"
)

// Engine runs product operations and waiting-list fulfillment. Every write
// is a compare-and-swap on Product.Version, retried on conflict.
type Engine struct {
	products      ProductStore
	users         UserDirectory
	notifier      Notifier
	log           *slog.Logger
	rec           Recorder
	retries       int
	notifyTimeout time.Duration
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.rec = r
		}
	}
}

// WithRetries bounds how many times a conflicting write is retried.
func WithRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.retries = n
		}
	}
}

// WithNotifyTimeout bounds how long Update waits for a notification batch.
func WithNotifyTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.notifyTimeout = d
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds an Engine. notifier may be nil when no update will
// fulfill subscribers, as in seeding.
func NewEngine(products ProductStore, users UserDirectory, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		products:      products,
		users:         users,
		notifier:      notifier,
		log:           logger.Discard(),
		rec:           nopRecorder{},
		retries:       5,
		notifyTimeout: 10 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(logger.Component("catalog"))
	return e
}

// Create validates in and stores a new product with an empty waiting list.
// Stock defaults to 1 when omitted.
func (e *Engine) Create(ctx context.Context, in CreateProductInput) (string, error) {
	stock := 1
	if in.Stock != nil {
		stock = *in.Stock
	}
	if err := (validation.Errors{
		"name":  validation.Validate(strings.TrimSpace(in.Name), validation.Required),
		"price": validation.Validate(in.Price, validation.Min(0.0)),
		"stock": validation.Validate(stock, validation.Min(0)),
	}).Filter(); err != nil {
		return "", err
	}

	now := e.now().UTC()
	p := &Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Attributes:  maps.Clone(in.Attributes),
		Price:       in.Price,
		Stock:       stock,
		Subscribers: []Subscriber{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Attributes == nil {
		p.Attributes = map[string]string{}
	}
	if err := e.products.CreateProduct(ctx, p); err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}

	e.log.InfoContext(ctx, "product created", logger.ProductID(p.ID))
	return p.ID, nil
}

func (e *Engine) Get(ctx context.Context, id string) (*Product, error) {
	p, err := e.products.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List returns the products matching f, oldest first. The slice is never nil.
func (e *Engine) List(ctx context.Context, f Filter) ([]Product, error) {
	products, err := e.products.QueryProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// Delete reports false when there was nothing to delete.
func (e *Engine) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := e.products.DeleteProduct(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	if deleted {
		e.log.InfoContext(ctx, "product deleted", logger.ProductID(id))
	}
	return deleted, nil
}

// Subscribe puts the requester on the product's waiting list, or overwrites
// the quantity of their existing entry without moving it.
func (e *Engine) Subscribe(ctx context.Context, productID, userID string, qty int) (SubscribeOutcome, error) {
	if qty <= 0 {
		return NoExistingEntry, ErrInvalidQty
	}

	email, err := e.users.UserEmail(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRequesterNotFound) {
			return NoExistingEntry, ErrRequesterNotFound
		}
		return NoExistingEntry, fmt.Errorf("subscribe: resolve requester: %w", err)
	}

	var outcome SubscribeOutcome
	_, err = e.mutate(ctx, productID, func(p *Product) error {
		outcome = NoExistingEntry
		for i := range p.Subscribers {
			if strings.EqualFold(p.Subscribers[i].Email, email) {
				p.Subscribers[i].Qty = qty
				outcome = ExistingEntryUpdated
				return nil
			}
		}
		p.Subscribers = append(p.Subscribers, Subscriber{Email: email, Qty: qty})
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return NoExistingEntry, ErrProductNotFound
		}
		return NoExistingEntry, fmt.Errorf("subscribe: %w", err)
	}

	e.rec.Subscription(outcome.String())
	e.log.InfoContext(ctx, "subscribed",
		logger.ProductID(productID),
		logger.UserID(userID),
		slog.Int("qty", qty),
		slog.String("outcome", outcome.String()),
	)
	return outcome, nil
}

// Update applies patch. When the product has a waiting list and the stock
// goes up, the allocation pass runs and fulfilled subscribers are removed in
// the same write. Notifications go out only after that write commits;
// their failures are logged and counted, never returned.
func (e *Engine) Update(ctx context.Context, productID string, patch ProductPatch) (*UpdateResult, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var fulfilled []Subscriber
	product, err := e.mutate(ctx, productID, func(p *Product) error {
		previous := p.Stock
		patch.apply(p)

		fulfilled = nil
		if len(p.Subscribers) > 0 && p.Stock > previous {
			var remaining []Subscriber
			fulfilled, remaining = Allocate(p.Subscribers, p.Stock)
			if remaining == nil {
				remaining = []Subscriber{}
			}
			p.Subscribers = remaining
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	res := &UpdateResult{Product: product, Fulfilled: fulfilled}
	if len(fulfilled) > 0 {
		e.rec.Fulfilled(len(fulfilled))
		res.NotificationFailures = e.notifyAll(ctx, product, fulfilled)
	}

	e.log.InfoContext(ctx, "product updated",
		logger.ProductID(productID),
		slog.Int("stock", product.Stock),
		slog.Int("fulfilled", len(fulfilled)),
		slog.Int("notification_failures", res.NotificationFailures),
	)
	return res, nil
}

// notifyAll sends one notification per subscriber concurrently and waits for
// the whole batch. It detaches from ctx cancellation since the write has
// already committed.
func (e *Engine) notifyAll(ctx context.Context, p *Product, subs []Subscriber) int {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.notifyTimeout)
	defer cancel()

	futures := make([]*async.Future[struct{}], 0, len(subs))
	for _, s := range subs {
		futures = append(futures, async.Async(nctx, s.Email, func(ctx context.Context, email string) (_ struct{}, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("notifier panicked: %v", r)
				}
			}()
			return struct{}{}, e.notifier.Notify(ctx, email, p.Name)
		}))
	}

	failures := 0
	for i, err := range async.Settle(futures...) {
		if err == nil {
			continue
		}
		failures++
		e.log.WarnContext(ctx, "restock notification failed",
			logger.Event("restock_notify"),
			logger.ProductID(p.ID),
			logger.Email(subs[i].Email),
			logger.Error(err),
		)
	}
	e.rec.NotificationFailed(failures)
	return failures
}

// mutate loads the product, applies fn and saves it, re-running fn on fresh
// state after a version conflict.
func (e *Engine) mutate(ctx context.Context, id string, fn func(*Product) error) (*Product, error) {
	for attempt := 0; ; attempt++ {
		p, err := e.products.ProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			return nil, err
		}

		p.UpdatedAt = e.now().UTC()
		err = e.products.SaveProduct(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= e.retries {
			return nil, err
		}

		e.rec.VersionConflict("product")
		e.log.DebugContext(ctx, "retrying product write", logger.ProductID(id), logger.Attempt(attempt+1))
	}
}

func validatePatch(p ProductPatch) error {
	errs := validation.Errors{}
	if p.Name != nil {
		errs["name"] = validation.Validate(strings.TrimSpace(*p.Name), validation.Required)
	}
	if p.Price != nil {
		errs["price"] = validation.Validate(*p.Price, validation.Min(0.0))
	}
	if p.Stock != nil {
		errs["stock"] = validation.Validate(*p.Stock, validation.Min(0))
	}
	return errs.Filter()
}
