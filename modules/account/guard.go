package account

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/restock/handler"
	"github.com/dmitrymomot/restock/pkg/jwt"
	"github.com/dmitrymomot/restock/pkg/logger"
	"github.com/dmitrymomot/restock/svc/auth"
)

// Guard authenticates the bearer token with pipeline before next runs. On
// success the principal is stored in the request context; on failure the
// error envelope is written and next is never called.
func Guard(pipeline auth.Pipeline, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := jwt.BearerToken(r)
			if err != nil {
				handler.RenderError(w, r, log, HTTPError(auth.ErrUnauthorized))
				return
			}

			principal, err := pipeline.Run(r.Context(), token)
			if err != nil {
				handler.RenderError(w, r, log, HTTPError(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}
