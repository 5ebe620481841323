package product

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/restock/handler"
	"github.com/dmitrymomot/restock/pkg/binder"
	"github.com/dmitrymomot/restock/pkg/logger"
	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

// Catalog is the part of catalog.Engine the endpoints need.
type Catalog interface {
	Create(ctx context.Context, in catalog.CreateProductInput) (string, error)
	Get(ctx context.Context, id string) (*catalog.Product, error)
	List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
	Update(ctx context.Context, id string, patch catalog.ProductPatch) (*catalog.UpdateResult, error)
	Delete(ctx context.Context, id string) (bool, error)
	Subscribe(ctx context.Context, productID, userID string, qty int) (catalog.SubscribeOutcome, error)
}

type Service struct {
	catalog      Catalog
	userGuard    func(http.Handler) http.Handler
	adminGuard   func(http.Handler) http.Handler
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(c Catalog, userGuard, adminGuard func(http.Handler) http.Handler, opts ...Option) *Service {
	s := &Service{
		catalog:    c,
		userGuard:  userGuard,
		adminGuard: adminGuard,
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("product"))
	s.errorHandler = handler.NewErrorHandler(s.log)
	return s
}

func passthrough(next http.Handler) http.Handler { return next }

func orPassthrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return passthrough
	}
	return mw
}

// Handle returns the router to mount at /product.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	path := binder.Path(chi.URLParam)

	r.Group(func(r chi.Router) {
		r.Use(orPassthrough(s.userGuard))

		r.Get("/", handler.Wrap(s.list,
			handler.WithBinders[handler.Context, ListRequest](binder.Query()),
			handler.WithErrorHandler[handler.Context, ListRequest](s.errorHandler),
		))
		r.Get("/{id}", handler.Wrap(s.get,
			handler.WithBinders[handler.Context, IDRequest](path),
			handler.WithErrorHandler[handler.Context, IDRequest](s.errorHandler),
		))
		r.Post("/subscribe/{id}", handler.Wrap(s.subscribe,
			handler.WithBinders[handler.Context, SubscribeRequest](path, binder.JSON()),
			handler.WithErrorHandler[handler.Context, SubscribeRequest](s.errorHandler),
		))
	})

	r.Group(func(r chi.Router) {
		r.Use(orPassthrough(s.adminGuard))

		r.Post("/", handler.Wrap(s.create,
			handler.WithBinders[handler.Context, CreateRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, CreateRequest](s.errorHandler),
		))
		r.Put("/{id}", handler.Wrap(s.update,
			handler.WithBinders[handler.Context, UpdateRequest](path, binder.JSON()),
			handler.WithErrorHandler[handler.Context, UpdateRequest](s.errorHandler),
		))
		r.Delete("/{id}", handler.Wrap(s.delete,
			handler.WithBinders[handler.Context, IDRequest](path),
			handler.WithErrorHandler[handler.Context, IDRequest](s.errorHandler),
		))
	})

	return r
}

func (s *Service) list(ctx handler.Context, req ListRequest) handler.Response {
	products, err := s.catalog.List(ctx, req.filter())
	if err != nil {
		return handler.Error(httpError(err, notFoundOnRead))
	}
	out := make([]Response, 0, len(products))
	for i := range products {
		out = append(out, newResponse(&products[i]))
	}
	return handler.OK(out)
}

func (s *Service) get(ctx handler.Context, req IDRequest) handler.Response {
	p, err := s.catalog.Get(ctx, req.ID)
	if err != nil {
		return handler.Error(httpError(err, notFoundOnRead))
	}
	return handler.OK(newResponse(p))
}

func (s *Service) create(ctx handler.Context, req CreateRequest) handler.Response {
	id, err := s.catalog.Create(ctx, catalog.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Attributes:  req.Attributes,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		return handler.Error(httpError(err, notFoundOnRead))
	}
	return handler.OK(CreateResponse{ID: id}, handler.WithStatus(http.StatusCreated))
}

func (s *Service) update(ctx handler.Context, req UpdateRequest) handler.Response {
	res, err := s.catalog.Update(ctx, req.ID, catalog.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Attributes:  req.Attributes,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		return handler.Error(httpError(err, notFoundOnUpdate))
	}
	fulfilled := res.Fulfilled
	if fulfilled == nil {
		fulfilled = []catalog.Subscriber{}
	}
	return handler.OK(UpdateResponse{
		Product:              newResponse(res.Product),
		Fulfilled:            fulfilled,
		NotificationFailures: res.NotificationFailures,
	})
}

// delete treats a missing product as success, reporting it in the message.
func (s *Service) delete(ctx handler.Context, req IDRequest) handler.Response {
	deleted, err := s.catalog.Delete(ctx, req.ID)
	if err != nil {
		return handler.Error(httpError(err, notFoundOnUpdate))
	}
	if !deleted {
		return handler.Message("The product id not found in database")
	}
	return handler.Message(fmt.Sprintf("Product %s deleted successfully.", req.ID))
}

func (s *Service) subscribe(ctx handler.Context, req SubscribeRequest) handler.Response {
	p := auth.PrincipalFromContext(ctx)
	if p == nil {
		return handler.Error(handler.NewHTTPError(http.StatusUnauthorized, "Invalid access token.", auth.ErrUnauthorized))
	}
	outcome, err := s.catalog.Subscribe(ctx, req.ID, p.UserID, req.Qty)
	if err != nil {
		return handler.Error(httpError(err, notFoundOnSubscribe))
	}
	return handler.OK(SubscribeResponse{Outcome: outcome.String()})
}
