package model

import (
	"fmt"
	"strconv"
)

// DeserializeValue reverses Value.String for every variant, given the
// variant's TypeId. Used by the persistor (spec §4.5: "Value ... [is a]
// lossless text representation defined by [its] TypeId's serializer") to
// rehydrate a Posit's AppearingValue column.
func DeserializeValue(typeId TypeId, text string) (Value, error) {
	switch typeId {
	case TypeString:
		return StringValue(text), nil
	case TypeInt64:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int64 value %q: %w", text, err)
		}
		return Int64Value(n), nil
	case TypeDecimal:
		d, err := NewDecimal(text)
		if err != nil {
			return nil, err
		}
		return DecimalValue{d}, nil
	case TypeJSON:
		return NewJSONValue(text)
	case TypeCertainty:
		c, err := ParseCertainty(text)
		if err != nil {
			return nil, err
		}
		return CertaintyValue{c}, nil
	case TypeTime:
		t, err := ParseTime(text)
		if err != nil {
			return nil, err
		}
		return TimeValue{t}, nil
	default:
		return nil, fmt.Errorf("unknown value type id %d", typeId)
	}
}
