package repository

import (
	"context"

	"storefront/internal/domain"
)

// OrderRepository is the durable order store. Create is append-only;
// Update merges a patch atomically with respect to other writers on the
// same id (last writer wins per call, never per field).
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error)
}
