package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-pricing/api/responses"
	"github.com/angelmondragon/storefront-pricing/api/validators"
	"github.com/angelmondragon/storefront-pricing/internal/cart"
	"github.com/angelmondragon/storefront-pricing/internal/catalog"
	"github.com/angelmondragon/storefront-pricing/internal/pricing"
	pkgerrors "github.com/angelmondragon/storefront-pricing/pkg/errors"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
	"github.com/angelmondragon/storefront-pricing/pkg/money"
)

const maxQuoteQuantity = cart.MaxQuantity

type priceResolver interface {
	ResolveDetail(schedule pricing.Schedule, qty int) (pricing.Resolution, bool)
}

type productSummary struct {
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Tiers       []string `json:"tiers"`
}

type productQuote struct {
	productSummary
	Quantity   int    `json:"quantity"`
	Tier       string `json:"tier,omitempty"`
	Priced     bool   `json:"priced"`
	UnitPrice  string `json:"unit_price,omitempty"`
	BasePrice  string `json:"base_price,omitempty"`
	LineTotal  string `json:"line_total"`
	Savings    string `json:"savings"`
	Breakpoint string `json:"breakpoint,omitempty"`
	Fallback   bool   `json:"fallback,omitempty"`
}

func summarize(p *catalog.Product) productSummary {
	return productSummary{
		SKU:         p.SKU,
		Name:        p.DisplayName(),
		Description: p.Description,
		Image:       p.Image,
		Tiers:       p.Pricing.Tiers(),
	}
}

// ProductList returns every product the catalog can enumerate.
func ProductList(lister catalog.Lister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lister == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog listing unavailable"))
			return
		}
		products, err := lister.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, catalogError(err))
			return
		}
		out := make([]productSummary, 0, len(products))
		for i := range products {
			out = append(out, summarize(&products[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ProductQuote returns a product with its unit price resolved for ?qty= under the
// current pricing context.
func ProductQuote(products catalog.Accessor, resolver priceResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if products == nil || resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		sku, err := validators.PathSKU(r, "sku")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty, err := validators.ParseQueryInt(r, "qty", 1, 1, maxQuoteQuantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSKU(ctx, sku)
		}
		product, err := products.LookupProduct(ctx, sku)
		if err != nil {
			responses.WriteError(ctx, logg, w, catalogError(err))
			return
		}

		responses.WriteSuccess(w, quoteProduct(product, resolver, qty))
	}
}

func quoteProduct(product *catalog.Product, resolver priceResolver, qty int) productQuote {
	out := productQuote{
		productSummary: summarize(product),
		Quantity:       qty,
		LineTotal:      money.Format(decimal.Zero),
		Savings:        money.Format(decimal.Zero),
	}

	res, ok := resolver.ResolveDetail(product.Pricing, qty)
	if !ok {
		return out
	}
	base, baseOK := pricing.ResolveBase(product.Pricing, qty)
	if !baseOK {
		base = res.Price
	}

	out.Tier = res.Tier
	out.Priced = true
	out.UnitPrice = money.Format(res.Price)
	out.BasePrice = money.Format(base)
	out.LineTotal = money.Format(pricing.LineTotal(res.Price, qty))
	out.Savings = money.Format(pricing.Savings(pricing.Price(base, true), pricing.Price(res.Price, true), qty))
	if res.Match.Breakpoint != nil {
		out.Breakpoint = res.Match.Breakpoint.Key
	}
	out.Fallback = res.Match.Fallback
	return out
}
