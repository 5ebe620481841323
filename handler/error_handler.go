package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/restock/pkg/binder"
	"github.com/dmitrymomot/restock/pkg/logger"
	"github.com/dmitrymomot/restock/pkg/requestid"
)

const (
	validationMessage = "Validation failed"
	internalMessage   = "Internal server error"
)

type errorInfo struct {
	status  int
	message string
	errors  []string
}

func classify(err error) errorInfo {
	var verr ValidationError
	if errors.As(err, &verr) {
		return errorInfo{status: http.StatusUnprocessableEntity, message: validationMessage, errors: verr.Messages()}
	}

	var herr HTTPError
	if errors.As(err, &herr) {
		return errorInfo{status: herr.Code, message: herr.Key}
	}

	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return errorInfo{status: http.StatusUnsupportedMediaType, message: err.Error()}
	case errors.Is(err, binder.ErrInvalidJSON),
		errors.Is(err, binder.ErrInvalidPath),
		errors.Is(err, binder.ErrInvalidQuery):
		return errorInfo{status: http.StatusBadRequest, message: err.Error()}
	}

	return errorInfo{status: http.StatusInternalServerError, message: internalMessage}
}

// RenderError classifies err, logs it (warn for 4xx, error for 5xx) and
// writes a failed envelope. Internal causes never reach the response body.
func RenderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	info := classify(err)

	if log != nil {
		level := slog.LevelWarn
		if info.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status", info.status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)
	}

	if rerr := Fail(info.status, info.message, info.errors...).Render(w, r); rerr != nil && log != nil {
		log.ErrorContext(r.Context(), "failed to write error response", logger.Error(rerr))
	}
}

// NewErrorHandler returns an ErrorHandler that logs through log.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx Context, err error) {
		RenderError(ctx.ResponseWriter(), ctx.Request(), log, err)
	}
}
