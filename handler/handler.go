package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/restock/pkg/binder"
)

// HandlerFunc handles a decoded request of type R.
type HandlerFunc[C Context, R any] func(ctx C, req R) Response

// Response renders itself to the writer.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// ErrorHandler renders errors from binding, validation, handlers or rendering.
type ErrorHandler[C Context] func(ctx C, err error)

// Decorator wraps a HandlerFunc. The first decorator passed to Wrap is the
// outermost.
type Decorator[C Context, R any] func(HandlerFunc[C, R]) HandlerFunc[C, R]

// Validatable requests are validated after binding.
type Validatable interface {
	Validate() error
}

type WrapOption[C Context, R any] func(*wrapConfig[C, R])

type wrapConfig[C Context, R any] struct {
	binders        []binder.Func
	errorHandler   ErrorHandler[C]
	contextFactory func(http.ResponseWriter, *http.Request) C
	decorators     []Decorator[C, R]
}

// WithBinders appends binders; they run in order.
func WithBinders[C Context, R any](binders ...binder.Func) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.binders = append(c.binders, binders...)
	}
}

func WithErrorHandler[C Context, R any](h ErrorHandler[C]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func WithContextFactory[C Context, R any](f func(http.ResponseWriter, *http.Request) C) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if f != nil {
			c.contextFactory = f
		}
	}
}

func WithDecorators[C Context, R any](decorators ...Decorator[C, R]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.decorators = append(c.decorators, decorators...)
	}
}

// Wrap converts h into an http.HandlerFunc. Without WithContextFactory, C
// must be satisfied by the value NewContext returns.
func Wrap[C Context, R any](h HandlerFunc[C, R], opts ...WrapOption[C, R]) http.HandlerFunc {
	cfg := &wrapConfig[C, R]{
		errorHandler: func(ctx C, err error) {
			RenderError(ctx.ResponseWriter(), ctx.Request(), nil, err)
		},
		contextFactory: func(w http.ResponseWriter, r *http.Request) C {
			c, ok := any(NewContext(w, r)).(C)
			if !ok {
				panic("handler: custom context type requires WithContextFactory")
			}
			return c
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	final := h
	for i := len(cfg.decorators) - 1; i >= 0; i-- {
		final = cfg.decorators[i](final)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := cfg.contextFactory(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				cfg.errorHandler(ctx, err)
				return
			}
		}
		if v, ok := any(&req).(Validatable); ok {
			if err := v.Validate(); err != nil {
				cfg.errorHandler(ctx, NewValidationError(err))
				return
			}
		}

		resp := final(ctx, req)
		if resp == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := resp.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}

// errorResponse lets handlers return an error as a Response.
type errorResponse struct{ err error }

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

// Error returns a Response whose rendering fails with err, handing it to the
// configured ErrorHandler.
func Error(err error) Response {
	if err == nil {
		err = errors.New("handler: nil error response")
	}
	return errorResponse{err: err}
}
