package model

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Value is bareclad's closed tagged union over String, Int64, Decimal,
// JSON, Certainty and Time (spec §3). Each concrete type below is a
// variant; TypeId() is the stable numeric tag used by the persistor and the
// hash-chain ledger, and Fingerprint() is the string the PositKeeper uses
// to distinguish e.g. "42:i64" from "42:decimal" (spec §4.2).
type Value interface {
	TypeId() TypeId
	String() string
	Fingerprint() string
}

// String is the UTF-8 string Value variant. Named StringValue to avoid
// colliding with the built-in string type.
type StringValue string

func (v StringValue) TypeId() TypeId     { return TypeString }
func (v StringValue) String() string     { return string(v) }
func (v StringValue) Fingerprint() string { return "s:" + string(v) }

// Int64Value is the signed 64-bit integer Value variant.
type Int64Value int64

func (v Int64Value) TypeId() TypeId      { return TypeInt64 }
func (v Int64Value) String() string      { return fmt.Sprintf("%d", int64(v)) }
func (v Int64Value) Fingerprint() string { return fmt.Sprintf("i:%d", int64(v)) }

// DecimalValue is the arbitrary-precision Value variant.
type DecimalValue struct{ Decimal }

func (v DecimalValue) TypeId() TypeId      { return TypeDecimal }
func (v DecimalValue) String() string      { return v.Decimal.String() }
func (v DecimalValue) Fingerprint() string { return "d:" + v.Decimal.String() }

// JSONValue is the JSON-document Value variant, stored as canonical
// compact text so structurally-equal documents share a fingerprint
// regardless of the original formatting.
type JSONValue struct{ canonical string }

// NewJSONValue parses and re-serializes raw JSON text into canonical form.
func NewJSONValue(raw string) (JSONValue, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return JSONValue{}, fmt.Errorf("invalid json value: %w", err)
	}
	canon, err := json.Marshal(v)
	if err != nil {
		return JSONValue{}, fmt.Errorf("re-encoding json value: %w", err)
	}
	return JSONValue{canonical: string(canon)}, nil
}

func (v JSONValue) TypeId() TypeId      { return TypeJSON }
func (v JSONValue) String() string      { return v.canonical }
func (v JSONValue) Fingerprint() string { return "j:" + v.canonical }

// CertaintyValue is the Certainty Value variant.
type CertaintyValue struct{ Certainty }

func (v CertaintyValue) TypeId() TypeId      { return TypeCertainty }
func (v CertaintyValue) String() string      { return v.Certainty.String() }
func (v CertaintyValue) Fingerprint() string { return "c:" + v.Certainty.String() }

// TimeValue is the Time Value variant — Time can appear either as a
// posit's own Time component or, separately, as the Value carried by a
// posit (spec §3 lists Time among the Value variants).
type TimeValue struct{ Time }

func (v TimeValue) TypeId() TypeId      { return TypeTime }
func (v TimeValue) String() string      { return v.Time.String() }
func (v TimeValue) Fingerprint() string { return "t:" + v.Time.String() }
