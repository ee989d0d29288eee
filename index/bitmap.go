// Package index implements bareclad's bitmap-backed lookups (spec §4.3):
// role_to_posit, appearance_set_to_posit, posit_to_appearance_set,
// posit_to_time and role_set_to_value_types. The posit-identity sets of
// role_to_posit and appearance_set_to_posit are compressed sorted 64-bit
// integer sets, backed by the teacher's own RoaringBitmap dependency;
// role_set_to_value_types keeps its TypeIds in a plain Go map.
package index

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/Roenbaeck/bareclad/identity"
)

// Set wraps a roaring64.Bitmap in bareclad's own identity.Thing vocabulary,
// the same way erigon-lib/kv wraps raw byte keys behind named table
// accessors — callers never touch the underlying bitmap type directly.
type Set struct {
	bm *roaring64.Bitmap
}

func NewSet() *Set { return &Set{bm: roaring64.New()} }

func SetOf(things ...identity.Thing) *Set {
	s := NewSet()
	for _, t := range things {
		s.Add(t)
	}
	return s
}

func (s *Set) Add(t identity.Thing) { s.bm.Add(uint64(t)) }

func (s *Set) Contains(t identity.Thing) bool { return s.bm.Contains(uint64(t)) }

func (s *Set) Cardinality() uint64 { return s.bm.GetCardinality() }

func (s *Set) IsEmpty() bool { return s.bm.IsEmpty() }

func (s *Set) Clone() *Set { return &Set{bm: s.bm.Clone()} }

// And returns a new Set holding the intersection of s and other. Neither
// input is mutated.
func (s *Set) And(other *Set) *Set {
	out := s.Clone()
	out.bm.And(other.bm)
	return out
}

// Or returns a new Set holding the union of s and other. Neither input is
// mutated.
func (s *Set) Or(other *Set) *Set {
	out := s.Clone()
	out.bm.Or(other.bm)
	return out
}

// ToSlice returns the set's members in ascending order.
func (s *Set) ToSlice() []identity.Thing {
	raw := s.bm.ToArray()
	out := make([]identity.Thing, len(raw))
	for i, v := range raw {
		out[i] = identity.Thing(v)
	}
	return out
}

// Intersect folds And across zero or more sets, returning nil (not empty)
// when given zero sets — callers use nil to mean "no constraint yet" versus
// an empty-but-present Set meaning "no candidates survive".
func Intersect(sets ...*Set) *Set {
	if len(sets) == 0 {
		return nil
	}
	out := sets[0].Clone()
	for _, s := range sets[1:] {
		out = out.And(s)
	}
	return out
}
