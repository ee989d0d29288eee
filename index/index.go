package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/Roenbaeck/bareclad/identity"
	"github.com/Roenbaeck/bareclad/keeper"
	"github.com/Roenbaeck/bareclad/model"
)

// Index holds all five lookups from spec §4.3, updated atomically with
// every keep_posit call that returns is_new=true.
type Index struct {
	mu sync.RWMutex

	roleToPosit          map[identity.Thing]*Set
	appearanceSetToPosit map[identity.Thing]*Set
	positToAppearanceSet map[identity.Thing]identity.Thing
	positToTime          map[identity.Thing]model.Time
	roleSetToValueTypes  map[string]map[model.TypeId]bool
}

func New() *Index {
	return &Index{
		roleToPosit:          make(map[identity.Thing]*Set),
		appearanceSetToPosit: make(map[identity.Thing]*Set),
		positToAppearanceSet: make(map[identity.Thing]identity.Thing),
		positToTime:          make(map[identity.Thing]model.Time),
		roleSetToValueTypes:  make(map[string]map[model.TypeId]bool),
	}
}

// RoleSetKey produces the sorted, comma-joined key used by
// role_set_to_value_types. Exported so the executor can probe it ahead of a
// search without duplicating the sort.
func RoleSetKey(roleNames []string) string {
	sorted := make([]string, len(roleNames))
	copy(sorted, roleNames)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// IndexPosit records a newly-interned posit across every lookup. roleNames
// must be the human-readable names of appearanceSet's roles, in any order.
func (ix *Index) IndexPosit(p *keeper.Posit, appearanceSet *keeper.AppearanceSet, roleNames []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, ap := range appearanceSet.Appearances {
		set, ok := ix.roleToPosit[ap.RoleId]
		if !ok {
			set = NewSet()
			ix.roleToPosit[ap.RoleId] = set
		}
		set.Add(p.Id)
	}

	asSet, ok := ix.appearanceSetToPosit[appearanceSet.Id]
	if !ok {
		asSet = NewSet()
		ix.appearanceSetToPosit[appearanceSet.Id] = asSet
	}
	asSet.Add(p.Id)

	ix.positToAppearanceSet[p.Id] = appearanceSet.Id
	ix.positToTime[p.Id] = p.Time

	key := RoleSetKey(roleNames)
	types, ok := ix.roleSetToValueTypes[key]
	if !ok {
		types = make(map[model.TypeId]bool)
		ix.roleSetToValueTypes[key] = types
	}
	types[p.Value.TypeId()] = true
}

// RoleToPosit returns the posits whose AppearanceSet contains roleId, or an
// empty Set if the role has never been observed.
func (ix *Index) RoleToPosit(roleId identity.Thing) *Set {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if s, ok := ix.roleToPosit[roleId]; ok {
		return s.Clone()
	}
	return NewSet()
}

// AppearanceSetToPosit returns the posits with exactly the given
// AppearanceSet.
func (ix *Index) AppearanceSetToPosit(appearanceSetId identity.Thing) *Set {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if s, ok := ix.appearanceSetToPosit[appearanceSetId]; ok {
		return s.Clone()
	}
	return NewSet()
}

// PositToAppearanceSet resolves a posit's AppearanceSet identity.
func (ix *Index) PositToAppearanceSet(positId identity.Thing) (identity.Thing, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.positToAppearanceSet[positId]
	return id, ok
}

// PositToTime resolves a posit's Time.
func (ix *Index) PositToTime(positId identity.Thing) (model.Time, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	t, ok := ix.positToTime[positId]
	return t, ok
}

// ValueTypesForRoleSet returns the TypeIds observed for values positioned
// over the given (unsorted) role names. Advisory only — used to prune
// projection probes, never authoritative for type checking (spec §4.3).
func (ix *Index) ValueTypesForRoleSet(roleNames []string) map[model.TypeId]bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	key := RoleSetKey(roleNames)
	out := make(map[model.TypeId]bool, len(ix.roleSetToValueTypes[key]))
	for t := range ix.roleSetToValueTypes[key] {
		out[t] = true
	}
	return out
}

// AllPositIds returns every posit identity ever indexed; used by the role-
// wildcard slow path (spec §4.6 step 1: "wildcards in role position ...
// require scanning").
func (ix *Index) AllPositIds() *Set {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := NewSet()
	for id := range ix.positToAppearanceSet {
		out.Add(id)
	}
	return out
}
