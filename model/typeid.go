// Package model implements bareclad's closed value/time/certainty type
// system (spec §3): a tagged union over String, Int64, Decimal, JSON,
// Certainty and Time, each carrying a stable numeric TypeId used by the
// persistor and the hash-chain ledger.
package model

// TypeId identifies a Value variant. Values are part of the persisted and
// hashed wire format (spec §4.5/§6) — existing constants are never
// renumbered.
type TypeId int

const (
	TypeString TypeId = iota + 1
	TypeInt64
	TypeDecimal
	TypeJSON
	TypeCertainty
	TypeTime
)

// Name returns the DataType row name used by the persistor's DataType table
// and the result-set row_types column.
func (t TypeId) Name() string {
	switch t {
	case TypeString:
		return "String"
	case TypeInt64:
		return "Int64"
	case TypeDecimal:
		return "Decimal"
	case TypeJSON:
		return "JSON"
	case TypeCertainty:
		return "Certainty"
	case TypeTime:
		return "Time"
	default:
		return "Unknown"
	}
}

// ParseTypeName reverses Name, used when reconciling the persisted DataType
// table against the known TypeIds at rehydration (spec §4.5 step 2).
func ParseTypeName(name string) (TypeId, bool) {
	switch name {
	case "String":
		return TypeString, true
	case "Int64":
		return TypeInt64, true
	case "Decimal":
		return TypeDecimal, true
	case "JSON":
		return TypeJSON, true
	case "Certainty":
		return TypeCertainty, true
	case "Time":
		return TypeTime, true
	default:
		return 0, false
	}
}

// AllTypeIds lists every known variant, used to seed the DataType table on
// a fresh database.
func AllTypeIds() []TypeId {
	return []TypeId{TypeString, TypeInt64, TypeDecimal, TypeJSON, TypeCertainty, TypeTime}
}
