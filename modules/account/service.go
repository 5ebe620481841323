package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrymomot/restock/handler"
	"github.com/dmitrymomot/restock/pkg/binder"
	"github.com/dmitrymomot/restock/pkg/jwt"
	"github.com/dmitrymomot/restock/pkg/logger"
	"github.com/dmitrymomot/restock/svc/auth"
)

// Authenticator is the part of auth.Authority the endpoints need.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	SignUp(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context, userID string) error
	RenewToken(ctx context.Context, currentToken string) (string, error)
}

type Service struct {
	authn        Authenticator
	userGuard    func(http.Handler) http.Handler
	loginLimit   func(http.Handler) http.Handler
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

// WithLoginLimiter wraps POST /login, typically with ratelimiter.Middleware.
func WithLoginLimiter(mw func(http.Handler) http.Handler) Option {
	return func(s *Service) { s.loginLimit = mw }
}

// NewService builds the account endpoints. userGuard protects sign-out and
// is usually Guard(auth.UserPipeline(...), log).
func NewService(authn Authenticator, userGuard func(http.Handler) http.Handler, opts ...Option) *Service {
	s := &Service{
		authn:     authn,
		userGuard: userGuard,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("account"))
	s.errorHandler = handler.NewErrorHandler(s.log)
	return s
}

// Handle returns the router to mount at /auth.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	login := http.Handler(handler.Wrap(s.login,
		handler.WithBinders[handler.Context, CredentialsRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, CredentialsRequest](s.errorHandler),
	))
	if s.loginLimit != nil {
		login = s.loginLimit(login)
	}
	r.Method(http.MethodPost, "/login", login)

	r.Post("/signup", handler.Wrap(s.signUp,
		handler.WithBinders[handler.Context, SignUpRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, SignUpRequest](s.errorHandler),
	))

	// Renewal accepts an expired token as long as it is the stored one, so it
	// sits outside the guard.
	r.Post("/renew", handler.Wrap(s.renew,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	r.Group(func(r chi.Router) {
		if s.userGuard != nil {
			r.Use(s.userGuard)
		}
		r.Get("/signout", handler.Wrap(s.signOut,
			handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
		))
	})

	return r
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *CredentialsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignUpRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
	)
}

type TokenResponse struct {
	Token string `json:"token"`
}

type SignUpResponse struct {
	ID string `json:"id"`
}

func (s *Service) login(ctx handler.Context, req CredentialsRequest) handler.Response {
	res, err := s.authn.Login(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(HTTPError(err))
	}
	return handler.OK(res)
}

func (s *Service) signUp(ctx handler.Context, req SignUpRequest) handler.Response {
	id, err := s.authn.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(HTTPError(err))
	}
	return handler.OK(SignUpResponse{ID: id}, handler.WithStatus(http.StatusCreated))
}

func (s *Service) signOut(ctx handler.Context, _ struct{}) handler.Response {
	p := auth.PrincipalFromContext(ctx)
	if p == nil {
		return handler.Error(HTTPError(auth.ErrUnauthorized))
	}
	if err := s.authn.SignOut(ctx, p.UserID); err != nil {
		return handler.Error(HTTPError(err))
	}
	return handler.OK(struct{}{})
}

func (s *Service) renew(ctx handler.Context, _ struct{}) handler.Response {
	token, err := jwt.BearerToken(ctx.Request())
	if err != nil {
		return handler.Error(HTTPError(auth.ErrUnauthorized))
	}
	renewed, err := s.authn.RenewToken(ctx, token)
	if err != nil {
		return handler.Error(HTTPError(err))
	}
	return handler.OK(TokenResponse{Token: renewed})
}
