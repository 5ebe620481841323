package auth

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/restock/pkg/jwt"
)

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) user(args mock.Arguments) (*User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User).Clone(), args.Error(1)
}

func (m *MockCredentialStore) UserByID(ctx context.Context, id string) (*User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockCredentialStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockCredentialStore) UserByToken(ctx context.Context, token string) (*User, error) {
	return m.user(m.Called(ctx, token))
}

func (m *MockCredentialStore) CreateUser(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockCredentialStore) SaveUser(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockCredentialStore) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) Sign(claims jwt.Claims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockSigner) Verify(token string) (*jwt.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Claims), args.Error(1)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) LoginAttempt(outcome string)   { m.Called(outcome) }
func (m *MockRecorder) SignUp()                       { m.Called() }
func (m *MockRecorder) VersionConflict(entity string) { m.Called(entity) }
