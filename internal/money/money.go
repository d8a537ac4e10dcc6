// Package money holds the exact-decimal helpers shared by order capture and
// reporting. Amounts are accumulated as decimal.Decimal at full precision and
// only rounded when they leave the system (persisted order totals, report
// payloads).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits of every currency amount.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two places, which is conventional
// cash-register rounding for positive amounts (2.345 -> 2.35). Banker's
// rounding is never used.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// SplitInclusive extracts the tax contained in a tax-inclusive total:
//
//	tax      = round(total * percent / (100 + percent))
//	subtotal = total - tax
//
// A non-positive percent yields zero tax. subtotal + tax == total always
// holds exactly because subtotal is derived from the rounded tax.
func SplitInclusive(total, percent decimal.Decimal) (subtotal, tax decimal.Decimal) {
	if !percent.IsPositive() {
		return total, decimal.Zero
	}
	tax = Round2(total.Mul(percent).Div(hundred.Add(percent)))
	return total.Sub(tax), tax
}

// Average divides sum by count, returning zero when count is zero.
func Average(sum decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

// ValidPercent reports whether p is a tax percent in [0, 100] with at most
// two decimals.
func ValidPercent(p decimal.Decimal) bool {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return false
	}
	return p.Equal(Round2(p))
}

// Amount is a currency value serialized as a JSON number with exactly two
// decimals (110.00, not 110 or "110"). The value is rounded on construction.
type Amount struct {
	d decimal.Decimal
}

// NewAmount rounds d to two places.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d: Round2(d)}
}

// Decimal returns the rounded value.
func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) String() string { return a.d.StringFixed(Places) }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.StringFixed(Places)), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings, so
// payloads frozen by older releases still decode.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		a.d = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("money: decode amount: %w", err)
	}
	a.d = Round2(d)
	return nil
}
