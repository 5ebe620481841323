package auth

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrUnauthorized      = errors.New("invalid access token")
	ErrNotLoggedIn       = errors.New("user is not logged in")
	ErrTokenRevoked      = errors.New("access token revoked")
	ErrForbidden         = errors.New("insufficient role")
	ErrVersionConflict   = errors.New("user version conflict")
)
