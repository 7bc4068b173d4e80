package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Context is the customer pricing context. An empty Tier means BaseTier.
type Context struct {
	Tier       string `json:"tier"`
	CustomerID string `json:"customer_id,omitempty"`
}

// TierOrBase returns the tier to resolve against.
func (c Context) TierOrBase() string {
	tier := strings.TrimSpace(c.Tier)
	if tier == "" {
		return BaseTier
	}
	return tier
}

// ContextSource supplies the active pricing context. It is consulted on every
// resolution so a context switch applies to the very next line.
type ContextSource interface {
	CurrentPricingContext() Context
}

// Resolution describes how a unit price was chosen.
type Resolution struct {
	// Tier is the tier whose table produced the price.
	Tier  string
	Price decimal.Decimal
	Match Match
}

// Resolver picks unit prices from a product's schedule for the active tier.
type Resolver struct {
	source ContextSource
}

// NewResolver builds a resolver reading tiers from source. A nil source always
// resolves against the base tier.
func NewResolver(source ContextSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the unit price for qty under the current pricing context, or false
// when the schedule cannot produce one.
func (r *Resolver) Resolve(schedule Schedule, qty int) (decimal.Decimal, bool) {
	res, ok := r.ResolveDetail(schedule, qty)
	if !ok {
		return decimal.Zero, false
	}
	return res.Price, true
}

// ResolveDetail is Resolve with the selected tier and breakpoint.
func (r *Resolver) ResolveDetail(schedule Schedule, qty int) (Resolution, bool) {
	if len(schedule) == 0 {
		return Resolution{}, false
	}

	tier := BaseTier
	if r != nil && r.source != nil {
		tier = r.source.CurrentPricingContext().TierOrBase()
	}

	table, ok := schedule.Table(tier)
	if !ok {
		tier = BaseTier
		table, ok = schedule.Base()
		if !ok {
			return Resolution{}, false
		}
	}

	match, ok := table.Lookup(qty)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Tier: tier, Price: match.Price, Match: match}, true
}

// ResolveBase returns the base tier price for qty regardless of the context.
func ResolveBase(schedule Schedule, qty int) (decimal.Decimal, bool) {
	table, ok := schedule.Base()
	if !ok {
		return decimal.Zero, false
	}
	return table.PriceFor(qty)
}
