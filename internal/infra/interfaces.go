package infra

import (
	"context"

	"storefront/internal/domain"
)

type CatalogClientInterface interface {
	GetProductById(ctx context.Context, id string) (*CatalogProduct, error)
	EnrichLines(ctx context.Context, lines []domain.CartLine) ([]domain.CartLine, error)
}

var _ CatalogClientInterface = (*CatalogClient)(nil)
