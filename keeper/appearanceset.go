package keeper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/identity"
)

// AppearanceSet is a non-empty set of Appearances with at most one
// Appearance per Role (spec §3). Appearances is always stored in canonical
// order: Role identity ascending, then Thing identity ascending.
type AppearanceSet struct {
	Id          identity.Thing
	Appearances []*Appearance
}

// Roles returns the set of role identities this AppearanceSet covers — the
// "role signature" used to seed candidate bitmaps (spec §4.6 step 1).
func (a *AppearanceSet) Roles() []identity.Thing {
	roles := make([]identity.Thing, len(a.Appearances))
	for i, ap := range a.Appearances {
		roles[i] = ap.RoleId
	}
	return roles
}

// ThingInRole returns the Thing appearing in the given role, if any.
func (a *AppearanceSet) ThingInRole(roleId identity.Thing) (identity.Thing, bool) {
	for _, ap := range a.Appearances {
		if ap.RoleId == roleId {
			return ap.ThingId, true
		}
	}
	return 0, false
}

// Serialize renders the pipe-separated "thing_id,role_id" text used by the
// persistor's AppearanceSet column (spec §4.5) — the order matches the
// canonical in-memory sequence, so the stored string and in-memory order
// are byte-equal for equivalent sets (invariant 2, spec §8).
func (a *AppearanceSet) Serialize() string {
	parts := make([]string, len(a.Appearances))
	for i, ap := range a.Appearances {
		parts[i] = fmt.Sprintf("%d,%d", ap.ThingId, ap.RoleId)
	}
	return strings.Join(parts, "|")
}

func sortAppearances(apps []*Appearance) []*Appearance {
	sorted := make([]*Appearance, len(apps))
	copy(sorted, apps)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RoleId != sorted[j].RoleId {
			return sorted[i].RoleId < sorted[j].RoleId
		}
		return sorted[i].ThingId < sorted[j].ThingId
	})
	return sorted
}

func fingerprintAppearanceSet(sorted []*Appearance) string {
	parts := make([]string, len(sorted))
	for i, ap := range sorted {
		parts[i] = fmt.Sprintf("%d", ap.Id)
	}
	return strings.Join(parts, ",")
}

// AppearanceSetKeeper interns AppearanceSets by their canonical sorted
// sequence of Appearance identities (spec §4.2).
type AppearanceSetKeeper struct {
	s *store[AppearanceSet]
}

func NewAppearanceSetKeeper(gen *identity.Generator) *AppearanceSetKeeper {
	return &AppearanceSetKeeper{s: newStore[AppearanceSet](gen)}
}

// Keep interns the given Appearances, sorting them canonically first.
// Rejects empty sets and sets with two Appearances sharing a Role
// (RoleCollision, spec §3/§4.2).
func (k *AppearanceSetKeeper) Keep(apps []*Appearance) (*AppearanceSet, bool, error) {
	if len(apps) == 0 {
		return nil, false, fmt.Errorf("%w: appearance set must be non-empty", bcerr.ErrInvalidAppearance)
	}
	sorted := sortAppearances(apps)
	seenRoles := make(map[identity.Thing]bool, len(sorted))
	for _, ap := range sorted {
		if seenRoles[ap.RoleId] {
			return nil, false, fmt.Errorf("%w: role %d appears more than once", bcerr.ErrRoleCollision, ap.RoleId)
		}
		seenRoles[ap.RoleId] = true
	}
	fp := fingerprintAppearanceSet(sorted)
	if h, ok := k.s.lookup(fp); ok {
		return h, false, nil
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if h, ok := k.s.byPrint[fp]; ok {
		return h, false, nil
	}
	id := k.s.gen.Next()
	h := &AppearanceSet{Id: id, Appearances: sorted}
	k.s.insert(fp, id, h)
	return h, true, nil
}

// KeepWithId is Keep's rehydration counterpart; apps are assumed already
// validated (no role collision) since they come from previously-persisted,
// previously-validated data.
func (k *AppearanceSetKeeper) KeepWithId(id identity.Thing, apps []*Appearance) (*AppearanceSet, bool) {
	sorted := sortAppearances(apps)
	fp := fingerprintAppearanceSet(sorted)
	if h, ok := k.s.lookup(fp); ok {
		return h, false
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if h, ok := k.s.byPrint[fp]; ok {
		return h, false
	}
	h := &AppearanceSet{Id: id, Appearances: sorted}
	k.s.insert(fp, id, h)
	k.s.gen.Observe(id)
	return h, true
}

func (k *AppearanceSetKeeper) ById(id identity.Thing) (*AppearanceSet, bool) { return k.s.byId(id) }

func (k *AppearanceSetKeeper) Count() int { return k.s.count() }
