package handler

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError carries the status code and the public envelope message for a
// failure. Err, when set, is logged but never rendered.
type HTTPError struct {
	Code int
	Key  string
	Err  error
}

func NewHTTPError(code int, key string, cause error) HTTPError {
	return HTTPError{Code: code, Key: key, Err: cause}
}

func (e HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Key, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Key)
}

func (e HTTPError) Unwrap() error { return e.Err }

// ValidationError maps a field name to its messages.
type ValidationError map[string][]string

func (v ValidationError) Error() string { return "validation failed" }

// Messages flattens the errors into sorted "field: message" strings.
func (v ValidationError) Messages() []string {
	out := make([]string, 0, len(v))
	for field, msgs := range v {
		for _, m := range msgs {
			out = append(out, field+": "+m)
		}
	}
	sort.Strings(out)
	return out
}

// NewValidationError converts ozzo validation.Errors into a ValidationError.
// Internal validator failures and foreign errors are returned unchanged.
func NewValidationError(err error) error {
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationError, len(verrs))
	for field, ferr := range verrs {
		if ferr == nil {
			continue
		}
		out[field] = append(out[field], ferr.Error())
	}
	return out
}
