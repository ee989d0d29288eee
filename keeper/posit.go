package keeper

import (
	"fmt"

	"github.com/Roenbaeck/bareclad/identity"
	"github.com/Roenbaeck/bareclad/model"
)

// Posit is a (AppearanceSet, Value, Time) triple with its own identity
// (spec §3). Two Posits are equal iff all three components are
// structurally equal.
type Posit struct {
	Id              identity.Thing
	AppearanceSetId identity.Thing
	Value           model.Value
	Time            model.Time
}

func fingerprintPosit(appearanceSetId identity.Thing, value model.Value, t model.Time) string {
	// value.Fingerprint() already carries the TypeId prefix, so "42:i64"
	// and "42:decimal" never collide (spec §4.2).
	return fmt.Sprintf("%d|%s|%s", appearanceSetId, value.Fingerprint(), t.String())
}

// PositKeeper interns Posits by (AppearanceSetId, Value, Time).
type PositKeeper struct {
	s *store[Posit]
}

func NewPositKeeper(gen *identity.Generator) *PositKeeper {
	return &PositKeeper{s: newStore[Posit](gen)}
}

// Keep interns a new posit over the given (already-interned) AppearanceSet.
func (k *PositKeeper) Keep(appearanceSet *AppearanceSet, value model.Value, t model.Time) (*Posit, bool) {
	fp := fingerprintPosit(appearanceSet.Id, value, t)
	if h, ok := k.s.lookup(fp); ok {
		return h, false
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if h, ok := k.s.byPrint[fp]; ok {
		return h, false
	}
	id := k.s.gen.Next()
	h := &Posit{Id: id, AppearanceSetId: appearanceSet.Id, Value: value, Time: t}
	k.s.insert(fp, id, h)
	return h, true
}

// KeepWithId is Keep's rehydration counterpart.
func (k *PositKeeper) KeepWithId(id identity.Thing, appearanceSetId identity.Thing, value model.Value, t model.Time) (*Posit, bool) {
	fp := fingerprintPosit(appearanceSetId, value, t)
	if h, ok := k.s.lookup(fp); ok {
		return h, false
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if h, ok := k.s.byPrint[fp]; ok {
		return h, false
	}
	h := &Posit{Id: id, AppearanceSetId: appearanceSetId, Value: value, Time: t}
	k.s.insert(fp, id, h)
	k.s.gen.Observe(id)
	return h, true
}

func (k *PositKeeper) ById(id identity.Thing) (*Posit, bool) { return k.s.byId(id) }

func (k *PositKeeper) Count() int { return k.s.count() }

// All returns every interned posit, in no particular order.
func (k *PositKeeper) All() []*Posit {
	k.s.mu.RLock()
	defer k.s.mu.RUnlock()
	out := make([]*Posit, 0, len(k.s.byIdentity))
	for _, p := range k.s.byIdentity {
		out = append(out, p)
	}
	return out
}
