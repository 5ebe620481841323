package jwt

import (
	"errors"
	"fmt"
	"slices"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload. Every token gets a unique ID so that two
// tokens issued for the same user within one second still differ.
type Claims struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles,omitempty"`
	gojwt.RegisteredClaims
}

// HasRole reports whether role is among the claimed roles.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

type Service struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Option func(*Service)

// WithTTL sets the token lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithClock overrides time.Now. Tests use it to produce expired tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		key: signingKey,
		ttl: 24 * time.Hour,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	return New([]byte(signingKey), opts...)
}

// Sign fills the registered claims (jti, sub, iss, iat, exp) and returns the
// signed token.
func (s *Service) Sign(claims Claims) (string, error) {
	if claims.UserID == "" {
		return "", ErrMissingSubject
	}

	now := s.now()
	claims.RegisteredClaims = gojwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.UserID,
		Issuer:    s.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry.
func (s *Service) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	parserOpts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, gojwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.key, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, errors.Join(ErrExpiredToken, err)
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
