package microfolio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the single reporting currency of the tracker.
// Multi-currency accounting is out of scope.
const Currency = "USD"

// Money represents a monetary value in the reporting currency.
//
// Intermediate arithmetic keeps full decimal precision; rounding to the
// currency's two fractional digits happens only at persistence and
// reporting, through Round2 and MarshalJSON.
type Money struct {
	value decimal.Decimal
}

// M is a convenient factory for Money values.
func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses a decimal string (e.g. "5.80") into a Money value.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d}, nil
}

// currency returns the full go-money currency for formatting.
func (m Money) currency() money.Currency {
	// the Money constructor guarantees a non-nil currency
	return *money.New(0, Currency).Currency()
}

// String returns the amount formatted with the currency symbol, e.g. "$185.00".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

// SignedString returns the formatted amount with an explicit sign, "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }

// binary operators.
func (m Money) Add(n Money) Money    { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money    { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money { return Money{value: m.value.Mul(q.value)} }

// Shares returns the whole number of shares m buys at the given unit price,
// rounding down. Flooring guarantees the resulting cost never exceeds m.
func (m Money) Shares(price Money) Quantity {
	return Quantity{value: m.value.Div(price.value).Floor()}
}

// Percent returns m as a percentage of base, 0 when base is zero.
func (m Money) Percent(base Money) Percent {
	if base.IsZero() {
		return 0
	}
	pct, _ := m.value.Div(base.value).Mul(newDecimal(100)).Float64()
	return Percent(pct)
}

// Round2 returns m rounded to two fractional digits, the persisted and
// reported form of every amount.
func (m Money) Round2() Money { return Money{value: m.value.Round(2)} }

// Fixed returns the bare amount with a fixed number of fractional digits,
// e.g. "185.00". Used for CSV columns where a currency symbol would get in
// the way of spreadsheets.
func (m Money) Fixed(places int32) string { return m.value.StringFixed(places) }

// MarshalJSON encodes the amount rounded to two fractional digits, as a
// decimal string (e.g. "54.84").
func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.Round(2).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler, accepting both quoted and bare numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}
