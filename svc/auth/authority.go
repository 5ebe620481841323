package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/restock/pkg/jwt"
	"github.com/dmitrymomot/restock/pkg/logger"
)

// Login outcomes reported to the Recorder.
const (
	LoginSuccess     = "success"
	LoginUnknownUser = "unknown_user"
	LoginBadPassword = "bad_password"
	LoginError       = "error"
)

// Authority owns the session token of every user. A user holds at most one
// token; only RenewToken replaces an existing one.
type Authority struct {
	store      CredentialStore
	signer     Signer
	log        *slog.Logger
	rec        Recorder
	bcryptCost int
	retries    int
	now        func() time.Time
}

// Option configures an Authority.
type Option func(*Authority)

// WithLogger sets the logger; nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Authority) {
		if l != nil {
			a.log = l
		}
	}
}

// WithRecorder sets the metrics sink for login, signup and conflict counters.
func WithRecorder(r Recorder) Option {
	return func(a *Authority) {
		if r != nil {
			a.rec = r
		}
	}
}

// WithBcryptCost sets the hashing cost; values outside bcrypt's range are
// ignored.
func WithBcryptCost(cost int) Option {
	return func(a *Authority) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			a.bcryptCost = cost
		}
	}
}

// WithRetries bounds how many times a conflicting write is retried.
func WithRetries(n int) Option {
	return func(a *Authority) {
		if n >= 0 {
			a.retries = n
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAuthority builds an Authority over store and signer. signer may be nil
// when the authority only registers users.
func NewAuthority(store CredentialStore, signer Signer, opts ...Option) *Authority {
	a := &Authority{
		store:      store,
		signer:     signer,
		log:        logger.Discard(),
		rec:        nopRecorder{},
		bcryptCost: bcrypt.DefaultCost,
		retries:    5,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(logger.Component("auth"))
	return a
}

// NormalizeEmail trims and lower-cases an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks credentials and returns the user's token. A user who already
// holds a token gets that same token back; otherwise a new one is issued.
func (a *Authority) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := a.store.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			a.rec.LoginAttempt(LoginUnknownUser)
			return nil, ErrUserNotFound
		}
		a.rec.LoginAttempt(LoginError)
		return nil, fmt.Errorf("login: load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.rec.LoginAttempt(LoginBadPassword)
		return nil, ErrInvalidPassword
	}

	user, err = a.mutate(ctx, user, func(u *User) (bool, error) {
		if u.Token != "" {
			return false, nil
		}
		token, err := a.sign(u)
		if err != nil {
			return false, err
		}
		u.Token = token
		return true, nil
	})
	if err != nil {
		a.rec.LoginAttempt(LoginError)
		return nil, fmt.Errorf("login: %w", err)
	}

	a.rec.LoginAttempt(LoginSuccess)
	a.log.InfoContext(ctx, "user logged in", logger.UserID(user.ID))
	return &LoginResult{Token: user.Token, Profile: user.Profile()}, nil
}

// SignUp registers a regular user and returns the new id.
func (a *Authority) SignUp(ctx context.Context, email, password string) (string, error) {
	u, err := a.Register(ctx, email, password)
	if err != nil {
		return "", err
	}
	a.rec.SignUp()
	return u.ID, nil
}

// Register creates an active, unconfirmed user with the given roles and no
// token.
func (a *Authority) Register(ctx context.Context, email, password string, roles ...string) (*User, error) {
	email = NormalizeEmail(email)
	if err := (validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.Email),
		"password": validation.Validate(password, validation.Required, validation.Length(6, 72)),
	}).Filter(); err != nil {
		return nil, err
	}

	if _, err := a.store.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyInUse
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("register: check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := a.now().UTC()
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Roles:        roles,
		Active:       true,
		Confirmed:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailAlreadyInUse) {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	a.log.InfoContext(ctx, "user registered", logger.UserID(u.ID), logger.Email(u.Email))
	return u, nil
}

// SignOut clears the stored token. A user without a token is already signed
// out.
func (a *Authority) SignOut(ctx context.Context, userID string) error {
	user, err := a.store.UserByID(ctx, userID)
	if err == nil {
		_, err = a.mutate(ctx, user, func(u *User) (bool, error) {
			if u.Token == "" {
				return false, nil
			}
			u.Token = ""
			return true, nil
		})
	}
	if err != nil {
		a.log.ErrorContext(ctx, "sign out failed", logger.UserID(userID), logger.Error(err))
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("sign out: %w", err)
	}

	a.log.InfoContext(ctx, "user signed out", logger.UserID(userID))
	return nil
}

// RenewToken rotates the token of whoever currently holds currentToken. The
// presented token only has to match the stored one, so an expired but
// current token can still be renewed.
func (a *Authority) RenewToken(ctx context.Context, currentToken string) (string, error) {
	if currentToken == "" {
		return "", ErrUnauthorized
	}
	user, err := a.store.UserByToken(ctx, currentToken)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("renew token: %w", err)
	}

	user, err = a.mutate(ctx, user, func(u *User) (bool, error) {
		// a reload after a conflict may show the token already signed out or
		// rotated; the presented one must still be current
		if subtle.ConstantTimeCompare([]byte(u.Token), []byte(currentToken)) != 1 {
			return false, ErrUnauthorized
		}
		token, err := a.sign(u)
		if err != nil {
			return false, err
		}
		u.Token = token
		return true, nil
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("renew token: %w", err)
	}

	a.log.InfoContext(ctx, "token renewed", logger.UserID(user.ID))
	return user.Token, nil
}

// ValidateUser loads the user a verified token refers to.
func (a *Authority) ValidateUser(ctx context.Context, userID string) (*User, error) {
	user, err := a.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("validate user: %w", err)
	}
	return user, nil
}

func (a *Authority) sign(u *User) (string, error) {
	token, err := a.signer.Sign(jwt.Claims{UserID: u.ID, Roles: u.Roles})
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// mutate applies fn to user and saves it. On a version conflict the user is
// reloaded and fn re-applied, up to a.retries extra attempts. fn returning
// false means nothing to save.
func (a *Authority) mutate(ctx context.Context, user *User, fn func(*User) (bool, error)) (*User, error) {
	for attempt := 0; ; attempt++ {
		changed, err := fn(user)
		if err != nil {
			return nil, err
		}
		if !changed {
			return user, nil
		}

		user.UpdatedAt = a.now().UTC()
		err = a.store.SaveUser(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= a.retries {
			return nil, err
		}

		a.rec.VersionConflict("user")
		a.log.DebugContext(ctx, "retrying user write", logger.UserID(user.ID), logger.Attempt(attempt+1))
		if user, err = a.store.UserByID(ctx, user.ID); err != nil {
			return nil, err
		}
	}
}
