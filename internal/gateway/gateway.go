// Package gateway adapts external payment gateways behind one
// capability set: create a payment intent, verify a client-submitted
// completion proof. Verification failure (signature mismatch) is a
// plain false, never an error; a GatewayError means transport trouble
// and may be retried by the caller with a fresh intent.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/settings"
)

// PaymentIntent is the gateway-side record of an authorized-but-
// unsettled payment attempt. Ephemeral: it lives between intent
// creation and verification or abandonment, and is never persisted
// beyond the ids copied onto the final order.
type PaymentIntent struct {
	ID             string `json:"id"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	ClientKey      string `json:"clientKey"`
}

// ClientProof is what the gateway's browser SDK hands back after the
// customer completes payment. The signature is verified server-side;
// nothing in it is trusted as-is.
type ClientProof struct {
	GatewayOrderID   string `json:"gatewayOrderId" binding:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

type PaymentGateway interface {
	Name() string
	CreateIntent(ctx context.Context, amountMinorUnits int64) (*PaymentIntent, error)
	Verify(ctx context.Context, intent *PaymentIntent, proof ClientProof) (bool, error)
}

const defaultTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// wrapTransportErr classifies an outbound call failure. Timeouts get
// their own reason so callers can apply their retry policy.
func wrapTransportErr(gatewayName, reason string, err error) *domain.GatewayError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.GatewayError{Gateway: gatewayName, Reason: domain.GatewayReasonTimeout, Err: err}
	}
	return &domain.GatewayError{Gateway: gatewayName, Reason: reason, Err: err}
}

// Select picks the gateway for the requested payment method from those
// enabled in the payment settings. An empty or unknown method falls
// back to Cash on Delivery.
func Select(method string, cfg settings.PaymentSettings) (PaymentGateway, error) {
	switch method {
	case MethodRazorpay:
		if !cfg.RazorpayEnabled {
			return nil, fmt.Errorf("gateway: razorpay is not enabled")
		}
		return NewRazorpay(cfg), nil
	case MethodPhonePe:
		if !cfg.PhonePeEnabled {
			return nil, fmt.Errorf("gateway: phonepe is not enabled")
		}
		return NewPhonePe(cfg), nil
	case MethodCOD, "":
		if !cfg.CODEnabled {
			return nil, fmt.Errorf("gateway: cash on delivery is not enabled")
		}
		return NewCashOnDelivery(), nil
	default:
		return nil, fmt.Errorf("gateway: unknown payment method %q", method)
	}
}

const (
	MethodRazorpay = "razorpay"
	MethodPhonePe  = "phonepe"
	MethodCOD      = "cod"
)
