package services

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/notify"
)

func CreateMockOrder(id string, status domain.OrderStatus, paymentStatus domain.PaymentStatus) *domain.Order {
	now := time.Now()
	return &domain.Order{
		ID: id,
		Customer: domain.Customer{
			Name:  TestCustomerName,
			Email: TestCustomerEmail,
			Phone: TestCustomerPhone,
		},
		ShippingAddress: "12 MG Road, Bengaluru",
		Items: []domain.OrderItem{
			{ProductID: "p1", ProductName: "Silk Saree", Quantity: 2, UnitPrice: 1000},
		},
		TotalAmount:   TestTotalAmount,
		Status:        status,
		PaymentMethod: "Cash on Delivery",
		PaymentStatus: paymentStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// recordingNotifier captures dispatched events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	orders []*domain.Order
}

func (r *recordingNotifier) Notify(ctx context.Context, event notify.Event, order *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.orders = append(r.orders, order)
}

func (r *recordingNotifier) dispatched() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

const (
	TestOrderID       = "ORD-20260831-120000-001"
	TestCustomerName  = "Asha Iyer"
	TestCustomerEmail = "asha@example.com"
	TestCustomerPhone = "+919876543210"
	TestTotalAmount   = int64(2000)
)
