package cart

import "github.com/shopspring/decimal"

// Quantity bounds match cart.MaxQuantity.
type addItemRequest struct {
	SKU      string `json:"sku" validate:"required,max=128,sku"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=100000"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,max=100000"`
}

type addBundleRequest struct {
	BundleName string `json:"bundle_name" validate:"required,max=128"`
	ItemCount  int    `json:"item_count" validate:"gte=0"`
	// TotalPrice accepts a JSON number or numeric string; absent means the bundle adds
	// nothing to the totals.
	TotalPrice *decimal.Decimal `json:"total_price"`
}
