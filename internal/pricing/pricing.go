// Package pricing resolves cart line prices. All amounts are integer
// minor units (paise) so totals never accumulate floating-point drift.
package pricing

import (
	"fmt"

	"storefront/internal/domain"
)

// EffectiveUnitPrice is the base price plus the selected variant's
// signed adjustment.
func EffectiveUnitPrice(line domain.CartLine) int64 {
	return line.UnitBasePrice + line.VariantPriceAdj
}

// CartTotal sums effective unit price times quantity across all lines.
// Inputs are pre-validated (quantity >= 1, non-negative base price).
func CartTotal(lines []domain.CartLine) int64 {
	var total int64
	for _, line := range lines {
		total += EffectiveUnitPrice(line) * int64(line.Quantity)
	}
	return total
}

// FormatINR renders paise as a rupee string for display, e.g. 2700
// becomes "27.00".
func FormatINR(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s%d.%02d", sign, paise/100, paise%100)
}
