package pricing

import "github.com/shopspring/decimal"

// LineTotal is unitPrice * qty.
func LineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// Savings is max(0, (base - tier) * qty); zero when either price is unavailable.
func Savings(base, tier decimal.NullDecimal, qty int) decimal.Decimal {
	if !base.Valid || !tier.Valid {
		return decimal.Zero
	}
	diff := base.Decimal.Sub(tier.Decimal).Mul(decimal.NewFromInt(int64(qty)))
	if diff.IsNegative() {
		return decimal.Zero
	}
	return diff
}

// Price wraps a resolved price for Savings.
func Price(value decimal.Decimal, ok bool) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: value, Valid: ok}
}
