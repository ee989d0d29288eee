// Adapted from erigon-lib/common/math/integer.go's HexOrDecimal64 and
// ParseUint64: the teacher's "accept either hex or decimal text" parsing
// shape, retargeted from a generic uint64 wrapper to bareclad's Thing
// identity so result rows and config files can carry identities as plain
// JSON numbers or as 0x-prefixed hex without ambiguity. Marshaling always
// emits decimal.
package identity

import (
	"fmt"
	"strconv"
)

// ParseThing parses s as a Thing in decimal or 0x-hex syntax. The empty
// string parses as the zero Thing.
func ParseThing(s string) (Thing, bool) {
	if s == "" {
		return 0, true
	}
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return Thing(v), err == nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return Thing(v), err == nil
}

// MustParseThing parses s as a Thing and panics if the string is invalid.
// Intended for literal identities in tests, not for user input.
func MustParseThing(s string) Thing {
	t, ok := ParseThing(s)
	if !ok {
		panic("invalid thing identity: " + s)
	}
	return t
}

// MarshalText implements encoding.TextMarshaler.
func (t Thing) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(t), 10)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Thing) UnmarshalText(input []byte) error {
	v, ok := ParseThing(string(input))
	if !ok {
		return fmt.Errorf("invalid thing identity %q", input)
	}
	*t = v
	return nil
}

func (t Thing) String() string {
	return strconv.FormatUint(uint64(t), 10)
}
