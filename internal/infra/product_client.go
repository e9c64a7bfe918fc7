package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/domain"
)

type CatalogVariant struct {
	ID              string `json:"id"`
	PriceAdjustment int64  `json:"price_adjustment"`
}

type CatalogProduct struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Image    string           `json:"image"`
	Price    int64            `json:"price"`
	Variants []CatalogVariant `json:"variants"`
}

type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *CatalogClient) GetProductById(ctx context.Context, id string) (*CatalogProduct, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id)), nil)
	resp, err := c.httpClient.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}
	var p CatalogProduct
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}

	return &p, nil
}

// EnrichLines replaces client-supplied names, images and prices with the
// catalog's values so the cart total is always computed from
// server-authoritative prices. Lines whose product is unknown are rejected.
func (c *CatalogClient) EnrichLines(ctx context.Context, lines []domain.CartLine) ([]domain.CartLine, error) {
	out := make([]domain.CartLine, len(lines))
	for i, line := range lines {
		p, err := c.GetProductById(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, &domain.ValidationError{Fields: []string{fmt.Sprintf("lines[%d].productId", i)}}
		}

		line.ProductName = p.Name
		line.ProductImage = p.Image
		line.UnitBasePrice = p.Price
		line.VariantPriceAdj = 0
		if line.VariantID != "" {
			found := false
			for _, v := range p.Variants {
				if v.ID == line.VariantID {
					line.VariantPriceAdj = v.PriceAdjustment
					found = true
					break
				}
			}
			if !found {
				return nil, &domain.ValidationError{Fields: []string{fmt.Sprintf("lines[%d].variantId", i)}}
			}
		}
		out[i] = line
	}
	return out, nil
}
