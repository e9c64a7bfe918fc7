package domain

// CartLine is one entry of a customer's cart. Prices are integer minor
// units (paise). A removed line is absent from the slice, never a
// zero-quantity entry.
type CartLine struct {
	ProductID       string `json:"productId" binding:"required"`
	ProductName     string `json:"productName"`
	ProductImage    string `json:"productImage"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	UnitBasePrice   int64  `json:"unitBasePrice" binding:"min=0"`
	VariantID       string `json:"variantId"`
	VariantPriceAdj int64  `json:"variantPriceAdjustment"`
}
