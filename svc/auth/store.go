package auth

import (
	"context"

	"github.com/dmitrymomot/restock/pkg/jwt"
)

// CredentialStore persists users. Lookups return ErrUserNotFound on absence.
// SaveUser succeeds only when the stored Version equals u.Version and then
// increments both; otherwise it returns ErrVersionConflict.
type CredentialStore interface {
	UserByID(ctx context.Context, id string) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByToken(ctx context.Context, token string) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	SaveUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
}

// Signer issues and verifies bearer tokens.
type Signer interface {
	Sign(claims jwt.Claims) (string, error)
	Verify(token string) (*jwt.Claims, error)
}

// Recorder receives login and conflict counters; *metrics.Metrics satisfies it.
type Recorder interface {
	LoginAttempt(outcome string)
	SignUp()
	VersionConflict(entity string)
}

type nopRecorder struct{}

func (nopRecorder) LoginAttempt(string)    {}
func (nopRecorder) SignUp()                {}
func (nopRecorder) VersionConflict(string) {}
