package ratelimiter

import (
	"hash/fnv"
	"net"
	"net/http"
	"strconv"
	"strings"
)

const maxKeyLength = 64

// KeyFunc extracts the bucket key from a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// ByRemoteIP keys on the client address. Run it behind chi's RealIP so
// proxy headers are already applied.
func ByRemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ByPath keys on the route path, so each endpoint gets its own bucket.
func ByPath(r *http.Request) string {
	return r.URL.Path
}

// Composite joins the non-empty keys; long results are hashed with FNV-1a.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		key := strings.Join(parts, ":")
		if len(key) <= maxKeyLength {
			return key
		}
		h := fnv.New64a()
		_, _ = h.Write([]byte(key))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}

// Middleware limits requests per key. Denied requests go to onLimited and
// store failures to onError; both receive the X-RateLimit-* headers already set.
func Middleware(b *Bucket, keyFn KeyFunc, onLimited http.Handler, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	if onLimited == nil {
		onLimited = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		})
	}
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := b.Allow(r.Context(), key)
			if err != nil {
				onError(w, r, err)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				if secs := int(res.RetryAfter().Seconds()); secs > 0 {
					h.Set("Retry-After", strconv.Itoa(secs))
				}
				onLimited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
