package auth

import (
	"context"
	"crypto/subtle"
	"errors"
)

// Principal accumulates what the guard steps learn about a request.
type Principal struct {
	Token  string
	UserID string
	Roles  []string
	User   *User
}

// Step checks one aspect of a request and may enrich the principal.
type Step func(ctx context.Context, p *Principal) error

// Pipeline runs its steps in order and stops at the first failure.
type Pipeline []Step

func (p Pipeline) Run(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	pr := &Principal{Token: token}
	for _, step := range p {
		if err := step(ctx, pr); err != nil {
			return nil, err
		}
	}
	return pr, nil
}

// UserValidator resolves the user a token names.
type UserValidator interface {
	ValidateUser(ctx context.Context, userID string) (*User, error)
}

// VerifySignature verifies the bearer token and loads its user.
func VerifySignature(signer Signer, users UserValidator) Step {
	return func(ctx context.Context, p *Principal) error {
		claims, err := signer.Verify(p.Token)
		if err != nil {
			return errors.Join(ErrUnauthorized, err)
		}
		user, err := users.ValidateUser(ctx, claims.UserID)
		if err != nil {
			return err
		}
		p.UserID = claims.UserID
		p.Roles = claims.Roles
		p.User = user
		return nil
	}
}

// CheckRevocation requires the bearer to equal the user's stored token.
func CheckRevocation() Step {
	return func(_ context.Context, p *Principal) error {
		if p.User == nil {
			return ErrUnauthorized
		}
		if p.User.Token == "" {
			return ErrNotLoggedIn
		}
		if subtle.ConstantTimeCompare([]byte(p.User.Token), []byte(p.Token)) != 1 {
			return ErrTokenRevoked
		}
		return nil
	}
}

// RequireRole checks the roles carried by the token's claims.
func RequireRole(role string) Step {
	return func(_ context.Context, p *Principal) error {
		for _, r := range p.Roles {
			if r == role {
				return nil
			}
		}
		return ErrForbidden
	}
}

// UserPipeline authenticates any signed-in user.
func UserPipeline(signer Signer, users UserValidator) Pipeline {
	return Pipeline{VerifySignature(signer, users), CheckRevocation()}
}

// AdminPipeline additionally requires RoleAdmin.
func AdminPipeline(signer Signer, users UserValidator) Pipeline {
	return append(UserPipeline(signer, users), RequireRole(RoleAdmin))
}
