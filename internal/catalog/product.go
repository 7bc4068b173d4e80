package catalog

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-pricing/internal/pricing"
)

var (
	// ErrProductNotFound is returned by accessors for unknown skus.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrCustomerNotFound is returned when switching to an unknown identity.
	ErrCustomerNotFound = errors.New("catalog: customer not found")
	// ErrUnknownTier is returned when a tier is outside the configured set.
	ErrUnknownTier = errors.New("catalog: unknown pricing tier")
)

// Product is a catalog record with its pricing parsed into typed tables.
type Product struct {
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Image       string           `json:"image,omitempty"`
	Pricing     pricing.Schedule `json:"pricing"`
}

// DisplayName falls back to the sku when the record has no name.
func (p *Product) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	return p.SKU
}

// Accessor looks products up by sku.
type Accessor interface {
	LookupProduct(ctx context.Context, sku string) (*Product, error)
}

// Lister is implemented by accessors that can enumerate their products.
type Lister interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// Customer is a mock shopper identity bound to a pricing tier.
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier"`
}
