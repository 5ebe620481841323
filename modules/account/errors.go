package account

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrymomot/restock/handler"
	"github.com/dmitrymomot/restock/svc/auth"
)

// HTTPError maps token authority errors onto their public status and
// message. Unknown errors are returned unchanged and render as 500.
func HTTPError(err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return handler.NewValidationError(verrs)
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.NewHTTPError(http.StatusNotFound, "User Not Found", err)
	case errors.Is(err, auth.ErrInvalidPassword):
		return handler.NewHTTPError(http.StatusUnauthorized, "Invalid Password.", err)
	case errors.Is(err, auth.ErrEmailAlreadyInUse):
		return handler.NewHTTPError(http.StatusBadRequest, "Email already in use", err)
	case errors.Is(err, auth.ErrNotLoggedIn):
		return handler.NewHTTPError(http.StatusUnauthorized, "You must log into system", err)
	case errors.Is(err, auth.ErrTokenRevoked):
		return handler.NewHTTPError(http.StatusUnauthorized, "Invalid access token", err)
	case errors.Is(err, auth.ErrUnauthorized):
		return handler.NewHTTPError(http.StatusUnauthorized, "Invalid access token.", err)
	case errors.Is(err, auth.ErrForbidden):
		return handler.NewHTTPError(http.StatusForbidden, "You have not access to this resource.", err)
	case errors.Is(err, auth.ErrVersionConflict):
		return handler.NewHTTPError(http.StatusConflict, "conflict", err)
	}
	return err
}

// TooManyAttempts renders the envelope for a throttled login.
func TooManyAttempts() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = handler.Fail(http.StatusTooManyRequests, "Too many login attempts, try again later").Render(w, r)
	})
}
