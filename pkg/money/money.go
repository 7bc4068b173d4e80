package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// DisplayPlaces is the number of decimals shown for monetary figures.
const DisplayPlaces = 2

// Format renders value with exactly two decimal places. Rounding happens here only.
func Format(value decimal.Decimal) string {
	return value.StringFixed(DisplayPlaces)
}

// Parse coerces a decoded JSON value (number, numeric string, decimal) into a decimal.
func Parse(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("price is empty")
	case decimal.Decimal:
		return v, nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		raw := strings.TrimPrefix(strings.TrimSpace(v), "$")
		if raw == "" {
			return decimal.Zero, fmt.Errorf("price is empty")
		}
		return decimal.NewFromString(raw)
	case bool:
		return decimal.Zero, fmt.Errorf("invalid price %v", v)
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid price %v: %w", v, err)
		}
		return decimal.NewFromFloat(f), nil
	}
}

// ParseOptional is Parse that treats nil as a missing value rather than an error.
func ParseOptional(value any) (*decimal.Decimal, error) {
	if value == nil {
		return nil, nil
	}
	d, err := Parse(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
