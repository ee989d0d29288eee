package model

import (
	"errors"
	"testing"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/stretchr/testify/require"
)

func TestTimeCompareCrossPrecision(t *testing.T) {
	// Open Question resolution: less-precise Time = start of its interval.
	require.Equal(t, -1, YearOnly(1972).Compare(YearMonth(1972, 2)))
	require.Equal(t, 1, YearMonth(1972, 2).Compare(YearOnly(1972)))
	require.Equal(t, 0, YearOnly(1972).Compare(Date(1972, 1, 1)))
	require.Equal(t, -1, BeginningOfTime.Compare(Date(1, 1, 1)))
	require.Equal(t, 1, EndOfTime.Compare(Date(9999, 12, 31)))
	require.Equal(t, 0, BeginningOfTime.Compare(BeginningOfTime))
}

func TestTimeParseRoundTrip(t *testing.T) {
	for _, s := range []string{"2023", "2023-01", "2023-01-01", "2023-01-01T00:00:00"} {
		tm, err := ParseTime(s)
		require.NoError(t, err)
		require.Equal(t, s, tm.String())
	}
}

func TestDecimalCompareAcrossInt64(t *testing.T) {
	d, err := NewDecimal("42.0")
	require.NoError(t, err)
	require.Equal(t, 0, d.Compare(DecimalFromInt64(42)))
}

func TestCompareOrderedRejectsString(t *testing.T) {
	_, err := CompareOrdered(StringValue("a"), StringValue("b"))
	require.True(t, errors.Is(err, bcerr.ErrUnorderedType))
}

func TestCompareOrderedNumericFamily(t *testing.T) {
	d, err := NewDecimal("10.5")
	require.NoError(t, err)
	cmp, err := CompareOrdered(Int64Value(10), DecimalValue{d})
	require.NoError(t, err)
	require.Equal(t, -1, cmp)
}

func TestCompareOrderedMismatch(t *testing.T) {
	_, err := CompareOrdered(Int64Value(1), CertaintyValue{50})
	require.True(t, errors.Is(err, bcerr.ErrOrderingTypeMismatch))
}

func TestEqualValuesAcrossTypes(t *testing.T) {
	require.True(t, EqualValues(StringValue("x"), StringValue("x")))
	require.False(t, EqualValues(StringValue("x"), Int64Value(1)))

	d, err := NewDecimal("3")
	require.NoError(t, err)
	require.True(t, EqualValues(Int64Value(3), DecimalValue{d}))
}

func TestJSONValueCanonicalizes(t *testing.T) {
	a, err := NewJSONValue(`{"b": 2, "a": 1}`)
	require.NoError(t, err)
	b, err := NewJSONValue(`{"a":1,"b":2}`)
	require.NoError(t, err)
	// go-json preserves map key order from the decoded representation the
	// same way encoding/json does (alphabetical for map[string]any), so
	// both inputs canonicalize identically regardless of source order.
	require.Equal(t, a.String(), b.String())
}

func TestPositFingerprintDistinguishesTypeId(t *testing.T) {
	require.NotEqual(t, Int64Value(42).Fingerprint(), DecimalValue{DecimalFromInt64(42)}.Fingerprint())
}
