package gateway

import "context"

// CashOnDelivery settles physically at delivery. No intent is ever
// created and verification trivially succeeds; the checkout keeps the
// order's payment status pending until an operator marks it collected.
type CashOnDelivery struct{}

func NewCashOnDelivery() *CashOnDelivery { return &CashOnDelivery{} }

func (g *CashOnDelivery) Name() string { return "Cash on Delivery" }

func (g *CashOnDelivery) CreateIntent(ctx context.Context, amountMinorUnits int64) (*PaymentIntent, error) {
	return nil, nil
}

func (g *CashOnDelivery) Verify(ctx context.Context, intent *PaymentIntent, proof ClientProof) (bool, error) {
	return true, nil
}
