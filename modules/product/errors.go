package product

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrymomot/restock/handler"
	"github.com/dmitrymomot/restock/svc/catalog"
)

// httpError maps engine errors. notFound carries the status and message
// the calling route uses for a missing product.
func httpError(err error, notFound handler.HTTPError) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return handler.NewValidationError(verrs)
	case errors.Is(err, catalog.ErrProductNotFound):
		notFound.Err = err
		return notFound
	case errors.Is(err, catalog.ErrRequesterNotFound):
		return handler.NewHTTPError(http.StatusUnauthorized, "User Not Found in our system", err)
	case errors.Is(err, catalog.ErrInvalidQty):
		return handler.NewHTTPError(http.StatusBadRequest, "qty must be greater than zero", err)
	case errors.Is(err, catalog.ErrVersionConflict):
		return handler.NewHTTPError(http.StatusConflict, "conflict", err)
	}
	return err
}

var (
	notFoundOnRead      = handler.HTTPError{Code: http.StatusNotFound, Key: "Product id Not Found"}
	notFoundOnUpdate    = handler.HTTPError{Code: http.StatusBadRequest, Key: "Product id Not Found"}
	notFoundOnSubscribe = handler.HTTPError{Code: http.StatusBadRequest, Key: "Product Id Not Found"}
)
