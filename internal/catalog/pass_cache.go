package catalog

import (
	"context"
	"errors"
)

type lookupResult struct {
	product *Product
	err     error
}

// PassCache memoises lookups for the lifetime of a single aggregation pass. Not-found
// results are cached too; other errors are not. It is not safe for concurrent use.
type PassCache struct {
	next    Accessor
	results map[string]lookupResult
}

// NewPassCache wraps next for one pass.
func NewPassCache(next Accessor) *PassCache {
	return &PassCache{next: next, results: map[string]lookupResult{}}
}

// LookupProduct returns the cached result for sku or fetches it.
func (c *PassCache) LookupProduct(ctx context.Context, sku string) (*Product, error) {
	if res, ok := c.results[sku]; ok {
		return res.product, res.err
	}
	product, err := c.next.LookupProduct(ctx, sku)
	if err == nil || errors.Is(err, ErrProductNotFound) {
		c.results[sku] = lookupResult{product: product, err: err}
	}
	return product, err
}
