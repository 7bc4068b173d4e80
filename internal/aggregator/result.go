package aggregator

import (
	"fmt"

	"github.com/angelmondragon/storefront-pricing/internal/cart"
	"github.com/angelmondragon/storefront-pricing/pkg/money"
	"github.com/shopspring/decimal"
)

// Result is the outcome of one aggregation pass. Figures are exact; rounding only
// happens in Display.
type Result struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	BaseTotal decimal.Decimal `json:"base_total"`
	Savings   decimal.Decimal `json:"savings"`
	Total     decimal.Decimal `json:"total"`
	Lines     []Line          `json:"lines"`
}

// Line is the per-item breakdown handed to a display.
type Line struct {
	Kind          cart.Kind       `json:"kind"`
	SKU           string          `json:"sku,omitempty"`
	DisplayName   string          `json:"display_name"`
	Quantity      int             `json:"quantity"`
	QuantityLabel string          `json:"quantity_label"`
	Tier          string          `json:"tier,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	BasePrice     decimal.Decimal `json:"base_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Savings       decimal.Decimal `json:"savings"`
	// Priced is false when the product had no usable pricing; the line then
	// contributes nothing.
	Priced bool `json:"priced"`
}

// Summary is a Result formatted for rendering.
type Summary struct {
	Subtotal string        `json:"subtotal"`
	Savings  string        `json:"savings"`
	Total    string        `json:"total"`
	Lines    []DisplayLine `json:"lines"`
}

// DisplayLine is a Line formatted for rendering.
type DisplayLine struct {
	DisplayName   string `json:"display_name"`
	QuantityLabel string `json:"quantity_label"`
	UnitPrice     string `json:"unit_price,omitempty"`
	LineTotal     string `json:"line_total"`
	Savings       string `json:"savings,omitempty"`
}

// Display formats every figure with two decimals.
func (r Result) Display() Summary {
	out := Summary{
		Subtotal: money.Format(r.Subtotal),
		Savings:  money.Format(r.Savings),
		Total:    money.Format(r.Total),
		Lines:    make([]DisplayLine, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		dl := DisplayLine{
			DisplayName:   l.DisplayName,
			QuantityLabel: l.QuantityLabel,
			LineTotal:     money.Format(l.LineTotal),
		}
		if l.Kind == cart.KindProduct && l.Priced {
			dl.UnitPrice = money.Format(l.UnitPrice)
			if l.Savings.IsPositive() {
				dl.Savings = money.Format(l.Savings)
			}
		}
		out.Lines = append(out.Lines, dl)
	}
	return out
}

func productQuantityLabel(qty int) string {
	return fmt.Sprintf("Qty: %d", qty)
}

func bundleQuantityLabel(count int) string {
	if count == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", count)
}
