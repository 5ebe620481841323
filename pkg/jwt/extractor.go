package jwt

import (
	"net/http"
	"strings"
)

// BearerToken returns the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
