package keeper

import (
	"fmt"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/identity"
)

// Appearance is an ordered (Thing, Role) pair with its own identity (spec
// §3). Two Appearances are equal iff their (ThingId, RoleId) pairs match.
type Appearance struct {
	Id      identity.Thing
	ThingId identity.Thing
	RoleId  identity.Thing
}

func fingerprintAppearance(thingId, roleId identity.Thing) string {
	return fmt.Sprintf("%d|%d", roleId, thingId)
}

// AppearanceKeeper interns Appearances by (RoleId, ThingId). Any Thing may
// appear — things are not separately registered. Keep rejects a nil Role
// with InvalidAppearance; it does not check that a non-nil Role was vended
// by a RoleKeeper.
type AppearanceKeeper struct {
	s *store[Appearance]
}

func NewAppearanceKeeper(gen *identity.Generator) *AppearanceKeeper {
	return &AppearanceKeeper{s: newStore[Appearance](gen)}
}

// Keep interns the (thingId, role) pair. thingId of zero is rejected: zero
// is reserved as "no identity" (identity.Generator never issues it).
func (k *AppearanceKeeper) Keep(thingId identity.Thing, role *Role) (*Appearance, bool, error) {
	if role == nil {
		return nil, false, fmt.Errorf("%w: role is nil", bcerr.ErrInvalidAppearance)
	}
	if thingId == 0 {
		return nil, false, fmt.Errorf("%w: thing identity is zero", bcerr.ErrInvalidAppearance)
	}
	fp := fingerprintAppearance(thingId, role.Id)
	if h, ok := k.s.lookup(fp); ok {
		return h, false, nil
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if h, ok := k.s.byPrint[fp]; ok {
		return h, false, nil
	}
	id := k.s.gen.Next()
	h := &Appearance{Id: id, ThingId: thingId, RoleId: role.Id}
	k.s.insert(fp, id, h)
	return h, true, nil
}

// KeepWithId is Keep's rehydration counterpart.
func (k *AppearanceKeeper) KeepWithId(id, thingId, roleId identity.Thing) (*Appearance, bool) {
	fp := fingerprintAppearance(thingId, roleId)
	if h, ok := k.s.lookup(fp); ok {
		return h, false
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if h, ok := k.s.byPrint[fp]; ok {
		return h, false
	}
	h := &Appearance{Id: id, ThingId: thingId, RoleId: roleId}
	k.s.insert(fp, id, h)
	k.s.gen.Observe(id)
	return h, true
}

func (k *AppearanceKeeper) ById(id identity.Thing) (*Appearance, bool) { return k.s.byId(id) }

func (k *AppearanceKeeper) Count() int { return k.s.count() }
