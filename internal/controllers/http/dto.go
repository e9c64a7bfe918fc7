package http

import (
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/gateway"
)

type StartCheckoutRequest struct {
	Lines []domain.CartLine `json:"lines" binding:"required"`
}

type SelectPaymentMethodRequest struct {
	Method string `json:"method"`
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus domain.PaymentStatus `json:"paymentStatus" binding:"required"`
}

type SessionResponse struct {
	ID         string         `json:"id"`
	State      checkout.State `json:"state"`
	FailReason string         `json:"failReason,omitempty"`
}

type BeginPaymentResponse struct {
	Method string                 `json:"method"`
	Intent *gateway.PaymentIntent `json:"intent,omitempty"`
}
