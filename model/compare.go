package model

import (
	"fmt"

	"github.com/Roenbaeck/bareclad/bcerr"
)

// numericFamily classifies a Value for cross-type ordering: Int64 and
// Decimal share a family (spec §4.6 step 5: "ordering allowed between
// compatible numeric families (i64<->Decimal)"), Certainty is its own
// family, everything else orders only against its own exact type.
func numericFamily(v Value) (Decimal, bool) {
	switch x := v.(type) {
	case Int64Value:
		return DecimalFromInt64(int64(x)), true
	case DecimalValue:
		return x.Decimal, true
	default:
		return Decimal{}, false
	}
}

// CompareOrdered implements the ordering half of a WHERE predicate (spec
// §4.6 step 5). Returns -1/0/1 the way Compare methods do. Two String values
// never support ordering (ErrUnorderedType); a String against any other type,
// and numeric-family mismatches that aren't both Int64/Decimal nor both
// Certainty, raise ErrOrderingTypeMismatch.
func CompareOrdered(a, b Value) (int, error) {
	_, aStr := a.(StringValue)
	_, bStr := b.(StringValue)
	if aStr && bStr {
		return 0, fmt.Errorf("%w: %s", bcerr.ErrUnorderedType, a.TypeId().Name())
	}
	if aStr || bStr {
		return 0, fmt.Errorf("%w: %s vs %s", bcerr.ErrOrderingTypeMismatch, a.TypeId().Name(), b.TypeId().Name())
	}

	if ac, ok := a.(CertaintyValue); ok {
		bc, ok2 := b.(CertaintyValue)
		if !ok2 {
			return 0, fmt.Errorf("%w: %s vs %s", bcerr.ErrOrderingTypeMismatch, a.TypeId().Name(), b.TypeId().Name())
		}
		return ac.Certainty.Compare(bc.Certainty), nil
	}
	if _, ok := b.(CertaintyValue); ok {
		return 0, fmt.Errorf("%w: %s vs %s", bcerr.ErrOrderingTypeMismatch, a.TypeId().Name(), b.TypeId().Name())
	}

	if at, ok := a.(TimeValue); ok {
		bt, ok2 := b.(TimeValue)
		if !ok2 {
			return 0, fmt.Errorf("%w: %s vs %s", bcerr.ErrOrderingTypeMismatch, a.TypeId().Name(), b.TypeId().Name())
		}
		return at.Time.Compare(bt.Time), nil
	}
	if _, ok := b.(TimeValue); ok {
		return 0, fmt.Errorf("%w: %s vs %s", bcerr.ErrOrderingTypeMismatch, a.TypeId().Name(), b.TypeId().Name())
	}

	ad, aok := numericFamily(a)
	bd, bok := numericFamily(b)
	if aok && bok {
		return ad.Compare(bd), nil
	}
	return 0, fmt.Errorf("%w: %s vs %s", bcerr.ErrOrderingTypeMismatch, a.TypeId().Name(), b.TypeId().Name())
}

// EqualValues implements the equality half of a WHERE predicate: spec §4.6
// step 5 additionally allows equality between equal String, JSON, Decimal,
// Int64 and Certainty TypeIds (beyond what CompareOrdered permits).
func EqualValues(a, b Value) bool {
	if as, ok := a.(StringValue); ok {
		bs, ok2 := b.(StringValue)
		return ok2 && as == bs
	}
	if aj, ok := a.(JSONValue); ok {
		bj, ok2 := b.(JSONValue)
		return ok2 && aj.canonical == bj.canonical
	}
	if at, ok := a.(TimeValue); ok {
		bt, ok2 := b.(TimeValue)
		return ok2 && at.Time.Equal(bt.Time)
	}
	cmp, err := CompareOrdered(a, b)
	return err == nil && cmp == 0
}
