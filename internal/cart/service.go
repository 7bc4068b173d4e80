package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-pricing/pkg/errors"
	"github.com/shopspring/decimal"
)

// MaxQuantity caps a product line's quantity, including merged additions.
const MaxQuantity = 100000

type updater interface {
	Update(ctx context.Context, fn func(*Cart) error) (Cart, error)
	Key() string
}

// Service exposes the shopper-facing cart mutations. Each call is one store write and
// therefore one cart-changed signal.
type Service struct {
	store updater
}

// NewService builds a service over the persistent store.
func NewService(store *PersistentStore) *Service {
	return &Service{store: store}
}

// AddItem appends a product line, or increases the quantity when the sku is already
// in the cart.
func (s *Service) AddItem(ctx context.Context, sku string, qty int) (Cart, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if qty < 1 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if qty > MaxQuantity {
		return Cart{}, quantityTooLarge()
	}
	return s.update(ctx, func(c *Cart) error {
		if idx := c.indexOfProduct(sku); idx >= 0 {
			if c.Items[idx].Quantity > MaxQuantity-qty {
				return quantityTooLarge().WithField("sku", sku).WithField("in_cart", c.Items[idx].Quantity)
			}
			c.Items[idx].Quantity += qty
			return nil
		}
		c.Items = append(c.Items, Product(sku, qty))
		return nil
	})
}

// UpdateQuantity sets the quantity of a product line. Zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sku string, qty int) (Cart, error) {
	sku = strings.TrimSpace(sku)
	if qty < 0 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if qty > MaxQuantity {
		return Cart{}, quantityTooLarge()
	}
	return s.update(ctx, func(c *Cart) error {
		idx := c.indexOfProduct(sku)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found").WithField("sku", sku)
		}
		if qty == 0 {
			c.removeAt(idx)
			return nil
		}
		c.Items[idx].Quantity = qty
		return nil
	})
}

// RemoveItem drops the product line for sku.
func (s *Service) RemoveItem(ctx context.Context, sku string) (Cart, error) {
	return s.UpdateQuantity(ctx, sku, 0)
}

// AddBundle appends a pre-priced bundle, replacing any bundle with the same name.
func (s *Service) AddBundle(ctx context.Context, name string, itemCount int, total *decimal.Decimal) (Cart, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "bundle name is required")
	}
	if itemCount < 0 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "item count cannot be negative")
	}
	if total != nil && total.IsNegative() {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "total price cannot be negative")
	}
	return s.update(ctx, func(c *Cart) error {
		item := Bundle(name, itemCount, total)
		if idx := c.indexOfBundle(name); idx >= 0 {
			c.Items[idx] = item
			return nil
		}
		c.Items = append(c.Items, item)
		return nil
	})
}

// RemoveBundle drops the bundle with name.
func (s *Service) RemoveBundle(ctx context.Context, name string) (Cart, error) {
	name = strings.TrimSpace(name)
	return s.update(ctx, func(c *Cart) error {
		idx := c.indexOfBundle(name)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "bundle not found").WithField("bundle", name)
		}
		c.removeAt(idx)
		return nil
	})
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) (Cart, error) {
	return s.update(ctx, func(c *Cart) error {
		c.Items = nil
		return nil
	})
}

// update runs fn through the store. Storage failures surface as dependency errors
// tagged with the cart key.
func (s *Service) update(ctx context.Context, fn func(*Cart) error) (Cart, error) {
	c, err := s.store.Update(ctx, fn)
	if err != nil && pkgerrors.As(err) == nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable").WithField("cart_key", s.store.Key())
	}
	return c, err
}

func quantityTooLarge() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed %d", MaxQuantity))
}
