package keeper

import (
	"github.com/Roenbaeck/bareclad/identity"
)

// Reserved role names (spec §3): the engine uses these for ascertainments
// and class/subclass modeling and refuses to let callers redefine their
// reserved-ness.
const (
	RolePosit      = "posit"
	RoleAscertains = "ascertains"
	RoleThing      = "thing"
	RoleClass      = "class"
	RoleNamed      = "named"
	RoleSubclass   = "subclass"
	RoleSuperclass = "superclass"
)

func isReservedName(name string) bool {
	switch name {
	case RolePosit, RoleAscertains, RoleThing, RoleClass, RoleNamed, RoleSubclass, RoleSuperclass:
		return true
	default:
		return false
	}
}

// Role is a human-readable name paired with its identity and reserved flag
// (spec §3). Handles are shared and never mutated after Keep returns them.
type Role struct {
	Id       identity.Thing
	Name     string
	Reserved bool
}

// RoleKeeper interns Roles by name: two Keep calls with the same name
// return the same identity (spec §4.2).
type RoleKeeper struct {
	s *store[Role]
}

func NewRoleKeeper(gen *identity.Generator) *RoleKeeper {
	return &RoleKeeper{s: newStore[Role](gen)}
}

// Keep interns name. reserved is a caller hint honored for non-engine
// names; engine-reserved names (spec §3) are always Reserved true
// regardless of the hint — a script cannot un-reserve "posit".
func (k *RoleKeeper) Keep(name string, reserved bool) (*Role, bool) {
	reserved = reserved || isReservedName(name)
	if h, ok := k.s.lookup(name); ok {
		return h, false
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if h, ok := k.s.byPrint[name]; ok {
		return h, false
	}
	id := k.s.gen.Next()
	h := &Role{Id: id, Name: name, Reserved: reserved}
	k.s.insert(name, id, h)
	return h, true
}

// KeepWithId is Keep's rehydration counterpart: the identity is already
// known from persisted state, so no new Thing is allocated (spec §4.2/§4.5).
func (k *RoleKeeper) KeepWithId(id identity.Thing, name string, reserved bool) (*Role, bool) {
	if h, ok := k.s.lookup(name); ok {
		return h, false
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if h, ok := k.s.byPrint[name]; ok {
		return h, false
	}
	h := &Role{Id: id, Name: name, Reserved: reserved}
	k.s.insert(name, id, h)
	k.s.gen.Observe(id)
	return h, true
}

func (k *RoleKeeper) ById(id identity.Thing) (*Role, bool) { return k.s.byId(id) }

func (k *RoleKeeper) ByName(name string) (*Role, bool) { return k.s.lookup(name) }

func (k *RoleKeeper) Count() int { return k.s.count() }
