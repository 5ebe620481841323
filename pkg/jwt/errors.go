package jwt

import "errors"

var (
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token expired")
	ErrMissingSubject    = errors.New("jwt: missing user id")
)
