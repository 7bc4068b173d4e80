package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// FileCatalog serves products from the storefront's mock JSON data. Records are parsed
// once at load time.
type FileCatalog struct {
	products map[string]*Product
	order    []string
	problems error
}

// LoadFile reads a products JSON file.
func LoadFile(path string) (*FileCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a catalog document: either a JSON array of products or an object with a
// "products" (or "data") array. Records that cannot be used are dropped and reported
// through Problems; only an undecodable document is an error.
func Load(r io.Reader) (*FileCatalog, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	records, err := splitRecords(payload)
	if err != nil {
		return nil, err
	}

	c := &FileCatalog{products: make(map[string]*Product, len(records))}
	for i, raw := range records {
		var p Product
		if err := json.Unmarshal(raw, &p); err != nil {
			c.problems = multierr.Append(c.problems, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		p.SKU = strings.TrimSpace(p.SKU)
		if p.SKU == "" {
			c.problems = multierr.Append(c.problems, fmt.Errorf("record %d: sku is required", i))
			continue
		}
		if _, dup := c.products[p.SKU]; dup {
			c.problems = multierr.Append(c.problems, fmt.Errorf("record %d: duplicate sku %s", i, p.SKU))
			continue
		}
		if _, ok := p.Pricing.Base(); !ok {
			c.problems = multierr.Append(c.problems, fmt.Errorf("record %d: sku %s has no base price", i, p.SKU))
		}
		product := p
		c.products[p.SKU] = &product
		c.order = append(c.order, p.SKU)
	}
	return c, nil
}

// NewFileCatalog builds a catalog from already-parsed products.
func NewFileCatalog(products ...Product) *FileCatalog {
	c := &FileCatalog{products: make(map[string]*Product, len(products))}
	for _, p := range products {
		product := p
		if _, dup := c.products[p.SKU]; !dup {
			c.order = append(c.order, p.SKU)
		}
		c.products[p.SKU] = &product
	}
	return c
}

func splitRecords(payload []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		return records, nil
	}

	var doc struct {
		Products []json.RawMessage `json:"products"`
		Data     []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Products) > 0 {
		return doc.Products, nil
	}
	return doc.Data, nil
}

// LookupProduct returns a copy of the record. The pricing schedule is shared and
// must be treated as read-only.
func (c *FileCatalog) LookupProduct(ctx context.Context, sku string) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := c.products[strings.TrimSpace(sku)]
	if !ok {
		return nil, ErrProductNotFound
	}
	out := *p
	return &out, nil
}

// ListProducts returns every product in file order.
func (c *FileCatalog) ListProducts(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(c.order))
	for _, sku := range c.order {
		out = append(out, *c.products[sku])
	}
	return out, nil
}

// Len is the number of loaded products.
func (c *FileCatalog) Len() int {
	return len(c.order)
}

// Problems aggregates the issues found while loading. Nil when the file was clean.
func (c *FileCatalog) Problems() error {
	return c.problems
}

// LoadCustomers reads the mock customer directory.
func LoadCustomers(path string) (*Customers, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open customers %s: %w", path, err)
	}
	var list []Customer
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	return NewCustomers(list...), nil
}

// Customers is an immutable directory of mock identities.
type Customers struct {
	byID map[string]Customer
}

// NewCustomers indexes customers by id; later duplicates win.
func NewCustomers(list ...Customer) *Customers {
	byID := make(map[string]Customer, len(list))
	for _, c := range list {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			continue
		}
		c.ID = id
		byID[id] = c
	}
	return &Customers{byID: byID}
}

// Get returns the customer for id.
func (c *Customers) Get(id string) (Customer, bool) {
	if c == nil {
		return Customer{}, false
	}
	cust, ok := c.byID[strings.TrimSpace(id)]
	return cust, ok
}

// List returns customers sorted by id.
func (c *Customers) List() []Customer {
	if c == nil {
		return nil
	}
	out := make([]Customer, 0, len(c.byID))
	for _, cust := range c.byID {
		out = append(out, cust)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
