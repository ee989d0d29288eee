package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal is bareclad's arbitrary-precision numeric value, backed by
// github.com/shopspring/decimal — present in the teacher's go.mod
// (v1.2.0) as an indirect dependency of an unrelated subsystem; no
// retrieved erigon source file imports it directly, but it's the one
// real decimal library anywhere in the pack, so it's wired here as the
// Decimal backing type rather than left on the shelf in favor of
// math/big.Rat (see DESIGN.md).
type Decimal struct {
	d decimal.Decimal
}

// NewDecimal parses a decimal or integer literal string ("42", "3.14",
// "-0.5") into a Decimal.
func NewDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal literal %q", s)
	}
	return Decimal{d: d}, nil
}

// DecimalFromInt64 lifts an integer into a Decimal, used when comparing an
// Int64 value against a Decimal (spec §4.6 step 5: i64<->Decimal ordering
// is permitted).
func DecimalFromInt64(v int64) Decimal {
	return Decimal{d: decimal.NewFromInt(v)}
}

func (d Decimal) TypeId() TypeId { return TypeDecimal }

// String renders the lossless canonical text form used both for display and
// for persistence (spec §4.5: "lossless text representations defined by
// their TypeId's serializer").
func (d Decimal) String() string {
	return d.d.String()
}

// Compare orders two Decimals, or a Decimal against an int64-derived one.
func (d Decimal) Compare(other Decimal) int {
	return d.d.Cmp(other.d)
}

// Equal reports exact value equality.
func (d Decimal) Equal(other Decimal) bool {
	return d.d.Equal(other.d)
}
