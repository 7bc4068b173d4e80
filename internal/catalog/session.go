package catalog

import (
	"strings"
	"sync"

	"github.com/angelmondragon/storefront-pricing/internal/events"
	"github.com/angelmondragon/storefront-pricing/internal/pricing"
)

// Session holds the shopper's current pricing context. It satisfies
// pricing.ContextSource; every change is broadcast as PricingContextChanged.
type Session struct {
	mu          sync.RWMutex
	current     pricing.Context
	defaultTier string
	tiers       map[string]struct{}
	customers   *Customers
	notifier    events.Notifier
}

// SessionOptions configures a Session.
type SessionOptions struct {
	// DefaultTier applies when no customer is signed in. Empty means base.
	DefaultTier string
	// Tiers is the closed set of accepted tiers. Empty accepts any tier.
	Tiers     []string
	Customers *Customers
	Notifier  events.Notifier
}

// NewSession builds a session starting on the default tier.
func NewSession(opts SessionOptions) *Session {
	tiers := map[string]struct{}{}
	for _, t := range opts.Tiers {
		if t = strings.TrimSpace(t); t != "" {
			tiers[t] = struct{}{}
		}
	}
	if len(tiers) > 0 {
		tiers[pricing.BaseTier] = struct{}{}
	}
	def := strings.TrimSpace(opts.DefaultTier)
	if def == "" {
		def = pricing.BaseTier
	}
	return &Session{
		current:     pricing.Context{Tier: def},
		defaultTier: def,
		tiers:       tiers,
		customers:   opts.Customers,
		notifier:    opts.Notifier,
	}
}

// CurrentPricingContext returns a snapshot of the context.
func (s *Session) CurrentPricingContext() pricing.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetTier switches the tier for an anonymous shopper, clearing any signed-in customer.
func (s *Session) SetTier(tier string) error {
	tier = strings.TrimSpace(tier)
	if tier == "" {
		tier = s.defaultTier
	}
	if !s.allowed(tier) {
		return ErrUnknownTier
	}
	s.update(pricing.Context{Tier: tier})
	return nil
}

// SwitchCustomer signs in as the customer with id and adopts their tier. An empty id
// signs out and returns to the default tier.
func (s *Session) SwitchCustomer(id string) (pricing.Context, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		next := pricing.Context{Tier: s.defaultTier}
		s.update(next)
		return next, nil
	}
	cust, ok := s.customers.Get(id)
	if !ok {
		return pricing.Context{}, ErrCustomerNotFound
	}
	tier := strings.TrimSpace(cust.Tier)
	if tier == "" {
		tier = pricing.BaseTier
	}
	if !s.allowed(tier) {
		return pricing.Context{}, ErrUnknownTier
	}
	next := pricing.Context{Tier: tier, CustomerID: cust.ID}
	s.update(next)
	return next, nil
}

func (s *Session) allowed(tier string) bool {
	if len(s.tiers) == 0 {
		return true
	}
	_, ok := s.tiers[tier]
	return ok
}

func (s *Session) update(next pricing.Context) {
	s.mu.Lock()
	changed := s.current != next
	s.current = next
	s.mu.Unlock()

	if changed && s.notifier != nil {
		s.notifier.Notify(events.PricingContextChanged)
	}
}
