package pricing

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed breakpoint key. Max is ignored when Unbounded is set.
type Range struct {
	Min       int
	Max       int
	Unbounded bool
}

// ParseRange parses "min-max" and "min+" breakpoint keys.
func ParseRange(key string) (Range, error) {
	raw := strings.TrimSpace(key)
	if raw == "" {
		return Range{}, fmt.Errorf("empty range key")
	}

	if strings.HasSuffix(raw, "+") {
		low, err := parseBound(strings.TrimSuffix(raw, "+"))
		if err != nil {
			return Range{}, fmt.Errorf("range %q: %w", key, err)
		}
		return Range{Min: low, Unbounded: true}, nil
	}

	lo, hi, ok := strings.Cut(raw, "-")
	if !ok {
		return Range{}, fmt.Errorf("range %q: expected min-max or min+", key)
	}
	low, err := parseBound(lo)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", key, err)
	}
	high, err := parseBound(hi)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", key, err)
	}
	if high < low {
		return Range{}, fmt.Errorf("range %q: max below min", key)
	}
	return Range{Min: low, Max: high}, nil
}

func parseBound(value string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("missing bound")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid bound %q", v)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative bound %d", n)
	}
	return n, nil
}

// Contains reports whether qty falls inside the range.
func (r Range) Contains(qty int) bool {
	if qty < r.Min {
		return false
	}
	return r.Unbounded || qty <= r.Max
}

func (r Range) String() string {
	if r.Unbounded {
		return fmt.Sprintf("%d+", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
