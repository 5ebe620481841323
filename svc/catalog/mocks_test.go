package catalog

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/restock/pkg/email"
)

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) ProductByID(ctx context.Context, id string) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product).Clone(), args.Error(1)
}

func (m *MockProductStore) CreateProduct(ctx context.Context, p *Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductStore) SaveProduct(ctx context.Context, p *Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductStore) QueryProducts(ctx context.Context, f Filter) ([]Product, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) UserEmail(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, to, productName string) error {
	return m.Called(ctx, to, productName).Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Subscription(outcome string)   { m.Called(outcome) }
func (m *MockRecorder) Fulfilled(n int)               { m.Called(n) }
func (m *MockRecorder) NotificationFailed(n int)      { m.Called(n) }
func (m *MockRecorder) VersionConflict(entity string) { m.Called(entity) }

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	return m.Called(ctx, params).Error(0)
}
