package domain

import "time"

// Lifecycle events published to the back-office exchange and fed to the
// notification dispatcher. Delivery is best-effort, at-least-once.

type OrderPlacedEvent struct {
	OrderID       string        `json:"orderId"`
	CustomerEmail string        `json:"customerEmail"`
	TotalAmount   int64         `json:"totalAmount"`
	PaymentMethod string        `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   string      `json:"orderId"`
	OldStatus OrderStatus `json:"oldStatus"`
	NewStatus OrderStatus `json:"newStatus"`
	ChangedAt time.Time   `json:"changedAt"`
}
