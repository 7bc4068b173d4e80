package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind discriminates cart line items.
type Kind string

const (
	KindProduct Kind = "product"
	KindBundle  Kind = "bundle"
)

// LineItem is one cart entry. Product items carry SKU and Quantity; bundle items are
// pre-priced units carrying BundleName, ItemCount and an optional TotalPrice.
type LineItem struct {
	Kind       Kind             `json:"type"`
	SKU        string           `json:"sku,omitempty"`
	Quantity   int              `json:"quantity,omitempty"`
	BundleName string           `json:"bundleName,omitempty"`
	ItemCount  int              `json:"itemCount,omitempty"`
	TotalPrice *decimal.Decimal `json:"totalPrice,omitempty"`
}

// Product builds a product line item.
func Product(sku string, qty int) LineItem {
	return LineItem{Kind: KindProduct, SKU: strings.TrimSpace(sku), Quantity: qty}
}

// Bundle builds a bundle line item. A nil total prices the bundle at zero.
func Bundle(name string, itemCount int, total *decimal.Decimal) LineItem {
	item := LineItem{Kind: KindBundle, BundleName: strings.TrimSpace(name), ItemCount: itemCount}
	if total != nil {
		t := *total
		item.TotalPrice = &t
	}
	return item
}

// IsBundle reports whether the item is a pre-priced bundle.
func (i LineItem) IsBundle() bool {
	return i.Kind == KindBundle
}

// BundleTotal is the bundle's total price, zero when absent.
func (i LineItem) BundleTotal() decimal.Decimal {
	if i.TotalPrice == nil {
		return decimal.Zero
	}
	return *i.TotalPrice
}

// Cart is an ordered snapshot of line items.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Len is the number of line items.
func (c Cart) Len() int {
	return len(c.Items)
}

// Clone returns a deep copy so callers can mutate it without touching the snapshot.
func (c Cart) Clone() Cart {
	out := Cart{Items: make([]LineItem, len(c.Items))}
	for i, item := range c.Items {
		if item.TotalPrice != nil {
			t := *item.TotalPrice
			item.TotalPrice = &t
		}
		out.Items[i] = item
	}
	return out
}

func (c Cart) indexOfProduct(sku string) int {
	for i, item := range c.Items {
		if !item.IsBundle() && item.SKU == sku {
			return i
		}
	}
	return -1
}

func (c Cart) indexOfBundle(name string) int {
	for i, item := range c.Items {
		if item.IsBundle() && item.BundleName == name {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
}
