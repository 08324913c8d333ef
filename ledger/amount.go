package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Monetary value in the smallest currency unit
// =============================================================================

// Amount is a non-negative-by-convention monetary value expressed in the
// smallest currency unit (e.g., paise, cents). It wraps decimal.Decimal to
// keep arithmetic exact; no float ever touches a fee balance.
//
// Negative intermediate values can occur during delta arithmetic (reversals),
// but every value stored on a FeeProfile or Transaction is >= 0.
type Amount struct {
	Value decimal.Decimal
}

// NewAmount builds an Amount from minor currency units.
func NewAmount(minor int64) Amount {
	return Amount{Value: decimal.NewFromInt(minor)}
}

// ParseAmount parses a decimal string previously produced by String().
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d}, nil
}

func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Neg() Amount               { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool    { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }

// FloorZero clamps a negative value to zero. Bucket decrements use this so a
// reversal or stale write can never drive a balance below zero.
func (a Amount) FloorZero() Amount {
	if a.IsNegative() {
		return Amount{}
	}
	return a
}

// Minor returns the value in minor units. Amounts are whole minor units
// throughout the system, so truncation never loses information.
func (a Amount) Minor() int64 { return a.Value.IntPart() }

func (a Amount) String() string { return a.Value.String() }

// MarshalJSON/UnmarshalJSON delegate to decimal so Amount round-trips through
// stores and API payloads without wrapping.
func (a Amount) MarshalJSON() ([]byte, error) { return a.Value.MarshalJSON() }

func (a *Amount) UnmarshalJSON(data []byte) error { return a.Value.UnmarshalJSON(data) }
