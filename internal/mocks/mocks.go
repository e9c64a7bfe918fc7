package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storefront/internal/domain"
	"storefront/internal/gateway"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
	GatewayName string
}

func (m *MockPaymentGateway) Name() string {
	if m.GatewayName != "" {
		return m.GatewayName
	}
	return "mock-gateway"
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, amountMinorUnits int64) (*gateway.PaymentIntent, error) {
	args := m.Called(ctx, amountMinorUnits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentIntent), args.Error(1)
}

func (m *MockPaymentGateway) Verify(ctx context.Context, intent *gateway.PaymentIntent, proof gateway.ClientProof) (bool, error) {
	args := m.Called(ctx, intent, proof)
	return args.Bool(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockOrderPlacer struct {
	mock.Mock
}

func (m *MockOrderPlacer) PlaceOrder(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
