package aggregator

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-pricing/internal/cart"
	"github.com/angelmondragon/storefront-pricing/internal/catalog"
	"github.com/angelmondragon/storefront-pricing/internal/pricing"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
	"github.com/angelmondragon/storefront-pricing/pkg/metrics"
	"github.com/shopspring/decimal"
)

const (
	skipMissingProduct  = "missing_product"
	skipLookupFailed    = "lookup_failed"
	skipInvalidQuantity = "invalid_quantity"
	skipUnpriced        = "unpriced"
)

// Aggregator turns a cart snapshot into totals. It never mutates the cart and never
// fails: unusable lines are left out and logged.
type Aggregator struct {
	catalog  catalog.Accessor
	resolver *pricing.Resolver
	logg     *logger.Logger
	metrics  *metrics.AggregationMetrics
}

// Options configures an Aggregator.
type Options struct {
	Catalog  catalog.Accessor
	Resolver *pricing.Resolver
	Logger   *logger.Logger
	Metrics  *metrics.AggregationMetrics
}

// New validates options and builds the aggregator.
func New(opts Options) (*Aggregator, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog accessor required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	return &Aggregator{
		catalog:  opts.Catalog,
		resolver: opts.Resolver,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
	}, nil
}

// Aggregate walks the cart in order and sums each line's contribution.
func (a *Aggregator) Aggregate(ctx context.Context, c cart.Cart) Result {
	lookups := catalog.NewPassCache(a.catalog)

	res := Result{
		Subtotal:  decimal.Zero,
		BaseTotal: decimal.Zero,
		Lines:     make([]Line, 0, len(c.Items)),
	}
	for _, item := range c.Items {
		if item.IsBundle() {
			total := item.BundleTotal()
			res.Subtotal = res.Subtotal.Add(total)
			res.BaseTotal = res.BaseTotal.Add(total)
			res.Lines = append(res.Lines, Line{
				Kind:          cart.KindBundle,
				DisplayName:   item.BundleName,
				Quantity:      item.ItemCount,
				QuantityLabel: bundleQuantityLabel(item.ItemCount),
				UnitPrice:     decimal.Zero,
				BasePrice:     decimal.Zero,
				LineTotal:     total,
				Savings:       decimal.Zero,
				Priced:        true,
			})
			continue
		}

		line, ok := a.productLine(ctx, lookups, item)
		if !ok {
			continue
		}
		if line.Priced {
			res.Subtotal = res.Subtotal.Add(line.LineTotal)
			res.BaseTotal = res.BaseTotal.Add(pricing.LineTotal(line.BasePrice, line.Quantity))
		}
		res.Lines = append(res.Lines, line)
	}

	res.Savings = res.BaseTotal.Sub(res.Subtotal)
	if res.Savings.IsNegative() {
		res.Savings = decimal.Zero
	}
	res.Total = res.Subtotal
	return res
}

func (a *Aggregator) productLine(ctx context.Context, lookups catalog.Accessor, item cart.LineItem) (Line, bool) {
	if item.Quantity < 1 {
		a.skip(ctx, item.SKU, skipInvalidQuantity, fmt.Sprintf("skipping cart line with quantity %d", item.Quantity))
		return Line{}, false
	}

	product, err := lookups.LookupProduct(ctx, item.SKU)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		a.skip(ctx, item.SKU, skipMissingProduct, "skipping cart line for unknown product")
		return Line{}, false
	case err != nil:
		a.skip(ctx, item.SKU, skipLookupFailed, fmt.Sprintf("skipping cart line, product lookup failed: %v", err))
		return Line{}, false
	case product == nil:
		a.skip(ctx, item.SKU, skipMissingProduct, "skipping cart line for unknown product")
		return Line{}, false
	}

	line := Line{
		Kind:          cart.KindProduct,
		SKU:           item.SKU,
		DisplayName:   product.DisplayName(),
		Quantity:      item.Quantity,
		QuantityLabel: productQuantityLabel(item.Quantity),
		UnitPrice:     decimal.Zero,
		BasePrice:     decimal.Zero,
		LineTotal:     decimal.Zero,
		Savings:       decimal.Zero,
	}

	resolved, ok := a.resolver.ResolveDetail(product.Pricing, item.Quantity)
	if !ok {
		a.skip(ctx, item.SKU, skipUnpriced, "cart line has no usable pricing")
		return line, true
	}

	base, hasBase := pricing.ResolveBase(product.Pricing, item.Quantity)
	if !hasBase {
		base = resolved.Price
	}

	line.Tier = resolved.Tier
	line.UnitPrice = resolved.Price
	line.BasePrice = base
	line.LineTotal = pricing.LineTotal(resolved.Price, item.Quantity)
	line.Savings = pricing.Savings(pricing.Price(base, true), pricing.Price(resolved.Price, true), item.Quantity)
	line.Priced = true

	if resolved.Match.Fallback && a.logg != nil {
		lctx := a.logg.WithTier(a.logg.WithLine(ctx, item.SKU, item.Quantity), resolved.Tier)
		a.logg.Debug(lctx, "no breakpoint contains the quantity, using first declared entry")
	}
	return line, true
}

func (a *Aggregator) skip(ctx context.Context, sku, reason, msg string) {
	a.metrics.IncSkipped(reason)
	if a.logg == nil {
		return
	}
	a.logg.Warn(a.logg.WithSKU(ctx, sku), msg)
}
