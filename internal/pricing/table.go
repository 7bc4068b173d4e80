package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/storefront-pricing/pkg/money"
	"github.com/shopspring/decimal"
)

// BaseTier is the reference tier used for savings and as the resolution fallback.
const BaseTier = "base"

// Kind distinguishes the two shapes a tier's pricing value can take.
type Kind uint8

const (
	KindScalar Kind = iota + 1
	KindBreakpoints
)

// Breakpoint maps a quantity range to a unit price. Valid is false when Key did not
// parse and Priced is false when the price did not; either way the entry never
// matches a quantity but still holds its place in declaration order.
type Breakpoint struct {
	Key    string
	Range  Range
	Price  decimal.Decimal
	Valid  bool
	Priced bool
}

// NewBreakpoint parses key and pairs it with price.
func NewBreakpoint(key string, price decimal.Decimal) Breakpoint {
	rng, err := ParseRange(key)
	return Breakpoint{
		Key:    key,
		Range:  rng,
		Price:  price,
		Valid:  err == nil,
		Priced: true,
	}
}

// UnpricedBreakpoint keeps the position of an entry whose price could not be read.
func UnpricedBreakpoint(key string) Breakpoint {
	bp := NewBreakpoint(key, decimal.Zero)
	bp.Priced = false
	return bp
}

// Matches reports whether the entry can serve qty.
func (b Breakpoint) Matches(qty int) bool {
	return b.Valid && b.Priced && b.Range.Contains(qty)
}

// Table is a tier's pricing value: either a single scalar price or a breakpoint list.
// The zero Table holds no price.
type Table struct {
	kind        Kind
	scalar      decimal.Decimal
	breakpoints []Breakpoint
	scan        []int
}

// Scalar builds a table that returns price for every quantity.
func Scalar(price decimal.Decimal) Table {
	return Table{kind: KindScalar, scalar: price}
}

// Breakpoints builds a table from entries in declaration order. The scan order is
// computed once here: descending lower bound, declaration order among equal bounds.
func Breakpoints(entries ...Breakpoint) Table {
	declared := make([]Breakpoint, len(entries))
	copy(declared, entries)

	scan := make([]int, 0, len(declared))
	for i, bp := range declared {
		if bp.Valid && bp.Priced {
			scan = append(scan, i)
		}
	}
	sort.SliceStable(scan, func(i, j int) bool {
		return declared[scan[i]].Range.Min > declared[scan[j]].Range.Min
	})

	return Table{kind: KindBreakpoints, breakpoints: declared, scan: scan}
}

// Kind returns the table shape, or 0 for the zero Table.
func (t Table) Kind() Kind {
	return t.kind
}

// IsZero reports whether the table carries no pricing at all. A breakpoint table
// without entries counts as zero, the same as a tier with no table.
func (t Table) IsZero() bool {
	return t.kind == 0 || (t.kind == KindBreakpoints && len(t.breakpoints) == 0)
}

// Entries returns the breakpoints in declaration order.
func (t Table) Entries() []Breakpoint {
	out := make([]Breakpoint, len(t.breakpoints))
	copy(out, t.breakpoints)
	return out
}

// ScalarPrice returns the scalar price when the table is a scalar.
func (t Table) ScalarPrice() (decimal.Decimal, bool) {
	if t.kind != KindScalar {
		return decimal.Zero, false
	}
	return t.scalar, true
}

// Match is the outcome of looking a quantity up in a table.
type Match struct {
	Price decimal.Decimal
	// Breakpoint is nil for scalar tables.
	Breakpoint *Breakpoint
	// Fallback is set when no range contained the quantity and the first declared
	// breakpoint was used instead.
	Fallback bool
}

// Lookup resolves the unit price for qty.
func (t Table) Lookup(qty int) (Match, bool) {
	switch t.kind {
	case KindScalar:
		return Match{Price: t.scalar}, true
	case KindBreakpoints:
		if len(t.breakpoints) == 0 {
			return Match{}, false
		}
		for _, idx := range t.scan {
			bp := t.breakpoints[idx]
			if bp.Matches(qty) {
				return Match{Price: bp.Price, Breakpoint: &bp}, true
			}
		}
		// No range matched: use the first declared entry rather than blocking the line.
		// An unpriced first entry leaves the tier without a price.
		first := t.breakpoints[0]
		if !first.Priced {
			return Match{}, false
		}
		return Match{Price: first.Price, Breakpoint: &first, Fallback: true}, true
	default:
		return Match{}, false
	}
}

// PriceFor is Lookup without the match details.
func (t Table) PriceFor(qty int) (decimal.Decimal, bool) {
	m, ok := t.Lookup(qty)
	if !ok {
		return decimal.Zero, false
	}
	return m.Price, true
}

// UnmarshalJSON accepts a number, a numeric string, an object keyed by range, or an
// array of {"range","price"} objects. Object key order is preserved.
func (t *Table) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = Table{}
		return nil
	}

	switch trimmed[0] {
	case '{':
		entries, err := decodeOrderedObject(trimmed)
		if err != nil {
			return err
		}
		*t = Breakpoints(entries...)
		return nil
	case '[':
		entries, err := decodeEntryList(trimmed)
		if err != nil {
			return err
		}
		*t = Breakpoints(entries...)
		return nil
	default:
		var raw any
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		price, err := money.Parse(raw)
		if err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		*t = Scalar(price)
		return nil
	}
}

// MarshalJSON writes scalars as numbers and breakpoint tables as ordered objects.
func (t Table) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case KindScalar:
		return []byte(t.scalar.String()), nil
	case KindBreakpoints:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, bp := range t.breakpoints {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(bp.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if bp.Priced {
				buf.WriteString(bp.Price.String())
			} else {
				buf.WriteString("null")
			}
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

func decodeOrderedObject(data []byte) ([]Breakpoint, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode breakpoints: %w", err)
	}

	entries := []Breakpoint{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode breakpoints: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode breakpoints: unexpected key %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode breakpoint %q: %w", key, err)
		}
		price, err := money.Parse(raw)
		if err != nil {
			entries = append(entries, UnpricedBreakpoint(key))
			continue
		}
		entries = append(entries, NewBreakpoint(key, price))
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode breakpoints: %w", err)
	}
	return entries, nil
}

type breakpointPayload struct {
	Range string `json:"range"`
	Price any    `json:"price"`
}

func decodeEntryList(data []byte) ([]Breakpoint, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload []breakpointPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode breakpoints: %w", err)
	}

	entries := make([]Breakpoint, 0, len(payload))
	for _, p := range payload {
		price, err := money.Parse(p.Price)
		if err != nil {
			entries = append(entries, UnpricedBreakpoint(strings.TrimSpace(p.Range)))
			continue
		}
		entries = append(entries, NewBreakpoint(strings.TrimSpace(p.Range), price))
	}
	return entries, nil
}
