package persist

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/blog"
	"github.com/Roenbaeck/bareclad/identity"
	"github.com/Roenbaeck/bareclad/index"
	"github.com/Roenbaeck/bareclad/keeper"
	"github.com/Roenbaeck/bareclad/model"
)

// Rehydrate reconstructs keepers and indexes from a File-mode Persistor's
// SQLite state, in the order spec §4.5 mandates: Things (reseed the
// identity generator), DataTypes (reconciled against the known TypeIds),
// Roles, then Posits (rebuilding Appearances and AppearanceSets on the
// fly), followed by ledger verification/backfill. A fresh, empty database
// rehydrates to an empty, freshly-seeded state and is not an error.
//
// Appearance and AppearanceSet identities are never separately persisted
// (only their (thing_id, role_id) content survives, serialized inside each
// Posit row) — spec §4.5's schema has no table for them. Rehydration
// therefore reconstructs them through the ordinary (non-pre-assigned) Keep
// path, which still dedups correctly by structural fingerprint; only Role,
// Posit and bare Thing identities are restored verbatim, which is all the
// external contract (queryable identities, the ledger) ever depends on.
func Rehydrate(
	p *Persistor,
	gen *identity.Generator,
	roles *keeper.RoleKeeper,
	appearances *keeper.AppearanceKeeper,
	appearanceSets *keeper.AppearanceSetKeeper,
	posits *keeper.PositKeeper,
	idx *index.Index,
) error {
	if p.IsInMemory() {
		return nil
	}

	db, closeConn, err := p.readConn()
	if err != nil {
		return err
	}
	defer closeConn()

	if err := rehydrateThings(db, gen); err != nil {
		return err
	}
	if err := rehydrateDataTypes(db); err != nil {
		return err
	}
	roleNamesById, err := rehydrateRoles(db, roles)
	if err != nil {
		return err
	}
	if err := rehydratePosits(db, roleNamesById, roles, appearances, appearanceSets, posits, idx); err != nil {
		return err
	}
	if err := p.VerifyOrBackfillLedger(); err != nil {
		return err
	}
	return nil
}

func rehydrateThings(db *sql.DB, gen *identity.Generator) error {
	rows, err := db.Query(`SELECT Thing_Identity FROM Thing`)
	if err != nil {
		return fmt.Errorf("%w: reading Thing table: %v", bcerr.ErrPersistenceIO, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("%w: scanning Thing row: %v", bcerr.ErrPersistenceIO, err)
		}
		gen.Observe(identity.Thing(id))
	}
	return rows.Err()
}

func rehydrateDataTypes(db *sql.DB) error {
	rows, err := db.Query(`SELECT DataType_Identity, DataType FROM DataType`)
	if err != nil {
		return fmt.Errorf("%w: reading DataType table: %v", bcerr.ErrPersistenceIO, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("%w: scanning DataType row: %v", bcerr.ErrPersistenceIO, err)
		}
		known, ok := model.ParseTypeName(name)
		if !ok || int64(known) != id {
			return fmt.Errorf("%w: unrecognized persisted data type %q (id %d)", bcerr.ErrUnknownDataType, name, id)
		}
	}
	return rows.Err()
}

func rehydrateRoles(db *sql.DB, roles *keeper.RoleKeeper) (map[identity.Thing]string, error) {
	rows, err := db.Query(`SELECT Role_Identity, Role, Reserved FROM Role`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading Role table: %v", bcerr.ErrPersistenceIO, err)
	}
	defer rows.Close()
	names := make(map[identity.Thing]string)
	for rows.Next() {
		var id int64
		var name string
		var reservedInt int
		if err := rows.Scan(&id, &name, &reservedInt); err != nil {
			return nil, fmt.Errorf("%w: scanning Role row: %v", bcerr.ErrPersistenceIO, err)
		}
		roles.KeepWithId(identity.Thing(id), name, reservedInt != 0)
		names[identity.Thing(id)] = name
	}
	return names, rows.Err()
}

func rehydratePosits(
	db *sql.DB,
	roleNamesById map[identity.Thing]string,
	roles *keeper.RoleKeeper,
	appearances *keeper.AppearanceKeeper,
	appearanceSets *keeper.AppearanceSetKeeper,
	posits *keeper.PositKeeper,
	idx *index.Index,
) error {
	rows, err := db.Query(`SELECT Posit_Identity, AppearanceSet, ValueType_Identity, AppearingValue, AppearanceTime FROM Posit ORDER BY Posit_Identity ASC`)
	if err != nil {
		return fmt.Errorf("%w: reading Posit table: %v", bcerr.ErrPersistenceIO, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var appearanceSetText, valueText, timeText string
		var typeIdInt int
		if err := rows.Scan(&id, &appearanceSetText, &typeIdInt, &valueText, &timeText); err != nil {
			return fmt.Errorf("%w: scanning Posit row: %v", bcerr.ErrPersistenceIO, err)
		}

		apps, roleNames, err := parseAppearanceSet(appearanceSetText, roleNamesById, roles, appearances)
		if err != nil {
			return err
		}
		appearanceSet, _, err := appearanceSets.Keep(apps)
		if err != nil {
			return fmt.Errorf("%w: rebuilding appearance set for posit %d: %v", bcerr.ErrPersistenceIO, id, err)
		}

		value, err := model.DeserializeValue(model.TypeId(typeIdInt), valueText)
		if err != nil {
			return fmt.Errorf("%w: deserializing value for posit %d: %v", bcerr.ErrPersistenceIO, id, err)
		}
		t, err := model.ParseTime(timeText)
		if err != nil {
			return fmt.Errorf("%w: deserializing time for posit %d: %v", bcerr.ErrPersistenceIO, id, err)
		}

		posit, _ := posits.KeepWithId(identity.Thing(id), appearanceSet.Id, value, t)
		idx.IndexPosit(posit, appearanceSet, roleNames)
	}
	return rows.Err()
}

// parseAppearanceSet decodes the pipe-separated "thing_id,role_id" text
// (spec §4.5) back into Appearance handles, rebuilding them through the
// AppearanceKeeper.
func parseAppearanceSet(
	text string,
	roleNamesById map[identity.Thing]string,
	roles *keeper.RoleKeeper,
	appearances *keeper.AppearanceKeeper,
) ([]*keeper.Appearance, []string, error) {
	pairs := strings.Split(text, "|")
	apps := make([]*keeper.Appearance, 0, len(pairs))
	roleNames := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		fields := strings.Split(pair, ",")
		if len(fields) != 2 {
			return nil, nil, fmt.Errorf("%w: malformed appearance set entry %q", bcerr.ErrInvalidAppearance, pair)
		}
		thingId, ok1 := identity.ParseThing(fields[0])
		roleId, ok2 := identity.ParseThing(fields[1])
		if !ok1 || !ok2 {
			return nil, nil, fmt.Errorf("%w: malformed appearance set entry %q", bcerr.ErrInvalidAppearance, pair)
		}
		role, ok := roles.ById(roleId)
		if !ok {
			return nil, nil, fmt.Errorf("%w: role %d referenced before being persisted", bcerr.ErrUnknownRole, roleId)
		}
		ap, _, err := appearances.Keep(thingId, role)
		if err != nil {
			return nil, nil, err
		}
		apps = append(apps, ap)
		roleNames = append(roleNames, roleNamesById[roleId])
	}
	blog.Debug("rehydrated appearance set", "entries", len(apps))
	return apps, roleNames, nil
}
