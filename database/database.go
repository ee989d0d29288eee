// Package database implements bareclad's facade (spec §4.4): it wires the
// keepers and the index together and exposes the create_* entry points that
// intern, index, and — when file-backed — persist in one call. The facade
// has no separate keep_* rehydration methods: Open hands its keepers and
// index to persist.Rehydrate, which interns persisted entities through the
// keepers directly, without a persistence side-effect.
package database

import (
	"fmt"
	"sync"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/blog"
	"github.com/Roenbaeck/bareclad/identity"
	"github.com/Roenbaeck/bareclad/index"
	"github.com/Roenbaeck/bareclad/keeper"
	"github.com/Roenbaeck/bareclad/model"
	"github.com/Roenbaeck/bareclad/persist"
)

// Database is the single entry point a caller (the traqula executor,
// cmd/bareclad, or a direct embedder) uses to build up a Transitional
// Modeling graph. It owns the identity generator and every keeper, and
// forwards new inserts to a Persistor when file-backed.
type Database struct {
	mu sync.Mutex

	gen            *identity.Generator
	roles          *keeper.RoleKeeper
	appearances    *keeper.AppearanceKeeper
	appearanceSets *keeper.AppearanceSetKeeper
	posits         *keeper.PositKeeper
	index          *index.Index
	persistor      *persist.Persistor
}

// Open constructs a Database backed by p (persist.Open(InMemory, "") for a
// transient database) and, for File mode, rehydrates from whatever state
// already exists at p's path.
func Open(p *persist.Persistor) (*Database, error) {
	gen := identity.NewGenerator(0)
	db := &Database{
		gen:            gen,
		roles:          keeper.NewRoleKeeper(gen),
		appearances:    keeper.NewAppearanceKeeper(gen),
		appearanceSets: keeper.NewAppearanceSetKeeper(gen),
		posits:         keeper.NewPositKeeper(gen),
		index:          index.New(),
		persistor:      p,
	}
	if !p.IsInMemory() {
		if err := p.EnsureDataTypes(); err != nil {
			return nil, err
		}
		if err := persist.Rehydrate(p, gen, db.roles, db.appearances, db.appearanceSets, db.posits, db.index); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Close releases the underlying Persistor, if any.
func (db *Database) Close() error {
	return db.persistor.Close()
}

// Index exposes the read-only lookups for the traqula executor.
func (db *Database) Index() *index.Index { return db.index }

// Roles exposes the RoleKeeper for name resolution during parsing/execution.
func (db *Database) Roles() *keeper.RoleKeeper { return db.roles }

// Posits exposes the PositKeeper for identity resolution during execution.
func (db *Database) Posits() *keeper.PositKeeper { return db.posits }

// AppearanceSets exposes the AppearanceSetKeeper for role-membership
// resolution during execution (e.g. extracting the Thing bound to a given
// Role out of a matched Posit's AppearanceSet).
func (db *Database) AppearanceSets() *keeper.AppearanceSetKeeper { return db.appearanceSets }

// VerifyLedger exposes the persistor's standalone ledger check (SPEC_FULL.md
// §C). InMemory databases have no ledger and report no mismatches.
func (db *Database) VerifyLedger() ([]persist.LedgerMismatch, error) {
	return db.persistor.VerifyLedger()
}

// CreateThing allocates a fresh Thing identity with no role or posit
// attached yet — e.g. the subject of a future add-posit. Always new by
// construction, so it is always persisted (when file-backed) and never
// deduplicated.
func (db *Database) CreateThing() (identity.Thing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.gen.Next()
	if err := db.persistor.InsertThing(id); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateRole interns name, persisting it (and recording its identity in the
// Thing registry) the first time it is seen.
func (db *Database) CreateRole(name string, reserved bool) (*keeper.Role, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	role, isNew := db.roles.Keep(name, reserved)
	if isNew {
		blog.Debug("new role", "name", name, "id", role.Id)
		if err := db.persistor.InsertThing(role.Id); err != nil {
			return nil, err
		}
		if err := db.persistor.InsertRole(role.Id, role.Name, role.Reserved); err != nil {
			return nil, err
		}
	}
	return role, nil
}

// CreateAppearance interns the (thing, role) pair.
func (db *Database) CreateAppearance(thing identity.Thing, role *keeper.Role) (*keeper.Appearance, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	ap, isNew, err := db.appearances.Keep(thing, role)
	if err != nil {
		return nil, err
	}
	if isNew {
		blog.Debug("new appearance", "thing", thing, "role", role.Name, "id", ap.Id)
		if err := db.persistor.InsertThing(ap.Id); err != nil {
			return nil, err
		}
	}
	return ap, nil
}

// CreateAppearanceSet interns apps as a canonical, role-collision-free
// appearance set.
func (db *Database) CreateAppearanceSet(apps []*keeper.Appearance) (*keeper.AppearanceSet, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	set, isNew, err := db.appearanceSets.Keep(apps)
	if err != nil {
		return nil, err
	}
	if isNew {
		blog.Debug("new appearance set", "id", set.Id, "size", len(set.Appearances))
		if err := db.persistor.InsertThing(set.Id); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// CreatePosit interns a posit over appearanceSet, indexing and persisting it
// when newly interned. roleNames (the human-readable names of
// appearanceSet's roles) feeds role_set_to_value_types.
func (db *Database) CreatePosit(appearanceSet *keeper.AppearanceSet, value model.Value, t model.Time) (*keeper.Posit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	posit, isNew := db.posits.Keep(appearanceSet, value, t)
	if isNew {
		roleNames := make([]string, len(appearanceSet.Appearances))
		for i, ap := range appearanceSet.Appearances {
			role, ok := db.roles.ById(ap.RoleId)
			if !ok {
				return nil, fmt.Errorf("%w: role %d in appearance set %d has no known name", bcerr.ErrUnknownRole, ap.RoleId, appearanceSet.Id)
			}
			roleNames[i] = role.Name
		}
		db.index.IndexPosit(posit, appearanceSet, roleNames)
		blog.Debug("new posit", "id", posit.Id, "appearance_set", appearanceSet.Id, "type", value.TypeId())
		if err := db.persistor.InsertThing(posit.Id); err != nil {
			return nil, err
		}
		if err := db.persistor.InsertPosit(posit.Id, appearanceSet.Serialize(), value, t); err != nil {
			return nil, err
		}
	}
	return posit, nil
}

// Ascertain builds the (posit_id, posit)+(thing_id, ascertains) appearance
// set described in the glossary and interns a posit carrying certainty over
// it at time t (SPEC_FULL.md §C). meta is the Thing doing the ascertaining;
// positId is the Posit being ascertained.
func (db *Database) Ascertain(meta identity.Thing, positId identity.Thing, certainty model.Certainty, t model.Time) (*keeper.Posit, error) {
	positRole, err := db.CreateRole(keeper.RolePosit, true)
	if err != nil {
		return nil, err
	}
	ascertainsRole, err := db.CreateRole(keeper.RoleAscertains, true)
	if err != nil {
		return nil, err
	}
	positAppearance, err := db.CreateAppearance(positId, positRole)
	if err != nil {
		return nil, err
	}
	metaAppearance, err := db.CreateAppearance(meta, ascertainsRole)
	if err != nil {
		return nil, err
	}
	set, err := db.CreateAppearanceSet([]*keeper.Appearance{positAppearance, metaAppearance})
	if err != nil {
		return nil, err
	}
	return db.CreatePosit(set, model.CertaintyValue{Certainty: certainty}, t)
}
