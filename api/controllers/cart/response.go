package cart

import (
	"github.com/angelmondragon/storefront-pricing/internal/aggregator"
	cartsvc "github.com/angelmondragon/storefront-pricing/internal/cart"
	"github.com/angelmondragon/storefront-pricing/pkg/money"
)

type cartItem struct {
	Type       cartsvc.Kind `json:"type"`
	SKU        string       `json:"sku,omitempty"`
	Quantity   int          `json:"quantity,omitempty"`
	BundleName string       `json:"bundle_name,omitempty"`
	ItemCount  int          `json:"item_count,omitempty"`
	TotalPrice *string      `json:"total_price,omitempty"`
}

type cartContents struct {
	Items []cartItem `json:"items"`
}

func newCartContents(c cartsvc.Cart) cartContents {
	out := cartContents{Items: make([]cartItem, 0, c.Len())}
	for _, item := range c.Items {
		ci := cartItem{Type: item.Kind}
		if item.IsBundle() {
			ci.BundleName = item.BundleName
			ci.ItemCount = item.ItemCount
			if item.TotalPrice != nil {
				formatted := money.Format(*item.TotalPrice)
				ci.TotalPrice = &formatted
			}
		} else {
			ci.SKU = item.SKU
			ci.Quantity = item.Quantity
		}
		out.Items = append(out.Items, ci)
	}
	return out
}

type aggregationLine struct {
	Type          cartsvc.Kind `json:"type"`
	SKU           string       `json:"sku,omitempty"`
	DisplayName   string       `json:"display_name"`
	QuantityLabel string       `json:"quantity_label"`
	Tier          string       `json:"tier,omitempty"`
	Priced        bool         `json:"priced"`
	UnitPrice     string       `json:"unit_price,omitempty"`
	LineTotal     string       `json:"line_total"`
	Savings       string       `json:"savings,omitempty"`
}

type aggregation struct {
	Subtotal  string            `json:"subtotal"`
	BaseTotal string            `json:"base_total"`
	Savings   string            `json:"savings"`
	Total     string            `json:"total"`
	Lines     []aggregationLine `json:"lines"`
}

func newAggregation(res aggregator.Result) aggregation {
	summary := res.Display()
	out := aggregation{
		Subtotal:  summary.Subtotal,
		BaseTotal: money.Format(res.BaseTotal),
		Savings:   summary.Savings,
		Total:     summary.Total,
		Lines:     make([]aggregationLine, 0, len(res.Lines)),
	}
	for i, l := range res.Lines {
		dl := summary.Lines[i]
		out.Lines = append(out.Lines, aggregationLine{
			Type:          l.Kind,
			SKU:           l.SKU,
			DisplayName:   dl.DisplayName,
			QuantityLabel: dl.QuantityLabel,
			Tier:          l.Tier,
			Priced:        l.Priced,
			UnitPrice:     dl.UnitPrice,
			LineTotal:     dl.LineTotal,
			Savings:       dl.Savings,
		})
	}
	return out
}
