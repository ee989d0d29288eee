package persist

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Roenbaeck/bareclad/identity"
	"github.com/Roenbaeck/bareclad/index"
	"github.com/Roenbaeck/bareclad/keeper"
	"github.com/Roenbaeck/bareclad/model"
)

func openTestDB(t *testing.T) *Persistor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bareclad.sqlite")
	p, err := Open(File, path)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	require.NoError(t, p.EnsureDataTypes())
	return p
}

func TestInMemoryPersistorIsNoOp(t *testing.T) {
	p, err := Open(InMemory, "")
	require.NoError(t, err)
	require.True(t, p.IsInMemory())
	require.NoError(t, p.InsertThing(identity.Thing(1)))
	require.NoError(t, p.InsertRole(identity.Thing(1), "name", false))
	require.NoError(t, p.InsertPosit(identity.Thing(2), "1,1", model.Int64Value(1), model.Date(2024, 1, 1)))
	mismatches, err := p.VerifyLedger()
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestInsertPositExtendsLedgerChain(t *testing.T) {
	p := openTestDB(t)

	roleId := identity.Thing(1)
	require.NoError(t, p.InsertThing(roleId))
	require.NoError(t, p.InsertRole(roleId, "name", false))

	thingId := identity.Thing(2)
	require.NoError(t, p.InsertThing(thingId))
	appearanceSet := fmt.Sprintf("%d,%d", thingId, roleId)

	p1 := identity.Thing(3)
	require.NoError(t, p.InsertThing(p1))
	require.NoError(t, p.InsertPosit(p1, appearanceSet, model.Int64Value(42), model.Date(2024, 1, 1)))

	p2 := identity.Thing(4)
	require.NoError(t, p.InsertThing(p2))
	require.NoError(t, p.InsertPosit(p2, appearanceSet, model.Int64Value(43), model.Date(2024, 1, 2)))

	var hashCount, headCount int64
	require.NoError(t, p.writeDB.QueryRow(`SELECT COUNT(*) FROM PositHash`).Scan(&hashCount))
	require.Equal(t, int64(2), hashCount)
	require.NoError(t, p.writeDB.QueryRow(`SELECT Count FROM LedgerHead WHERE Name = ?`, ledgerName).Scan(&headCount))
	require.Equal(t, int64(2), headCount)

	var prev1 string
	require.NoError(t, p.writeDB.QueryRow(`SELECT PrevHash FROM PositHash WHERE Posit_Identity = ?`, int64(p1)).Scan(&prev1))
	require.Equal(t, genesisHash, prev1)

	mismatches, err := p.VerifyLedger()
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestVerifyLedgerDetectsTamperedHash(t *testing.T) {
	p := openTestDB(t)
	roleId := identity.Thing(1)
	require.NoError(t, p.InsertRole(roleId, "name", false))
	thingId := identity.Thing(2)
	appearanceSet := fmt.Sprintf("%d,%d", thingId, roleId)
	positId := identity.Thing(3)
	require.NoError(t, p.InsertPosit(positId, appearanceSet, model.Int64Value(1), model.Date(2024, 1, 1)))

	_, err := p.writeDB.Exec(`UPDATE PositHash SET Hash = ? WHERE Posit_Identity = ?`, "tampered", int64(positId))
	require.NoError(t, err)

	mismatches, err := p.VerifyLedger()
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	require.Equal(t, positId, mismatches[0].PositId)
}

func TestVerifyOrBackfillLedgerSeedsMissingChain(t *testing.T) {
	p := openTestDB(t)
	roleId := identity.Thing(1)
	require.NoError(t, p.InsertRole(roleId, "name", false))
	thingId := identity.Thing(2)
	appearanceSet := fmt.Sprintf("%d,%d", thingId, roleId)

	// Insert a Posit row directly, bypassing InsertPosit, to simulate a
	// pre-ledger database with posits but no PositHash rows.
	_, err := p.writeDB.Exec(
		`INSERT INTO Posit (Posit_Identity, AppearanceSet, AppearingValue, ValueType_Identity, AppearanceTime) VALUES (?, ?, ?, ?, ?)`,
		int64(3), appearanceSet, "1", int(model.TypeInt64), "2024-01-01",
	)
	require.NoError(t, err)

	require.NoError(t, p.VerifyOrBackfillLedger())

	var hashCount int64
	require.NoError(t, p.writeDB.QueryRow(`SELECT COUNT(*) FROM PositHash`).Scan(&hashCount))
	require.Equal(t, int64(1), hashCount)

	mismatches, err := p.VerifyLedger()
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestRehydrateRestoresRolesPositsAndIndex(t *testing.T) {
	p := openTestDB(t)

	roleId := identity.Thing(1)
	require.NoError(t, p.InsertRole(roleId, "name", false))
	thingId := identity.Thing(2)
	appearanceSet := fmt.Sprintf("%d,%d", thingId, roleId)

	positId := identity.Thing(3)
	require.NoError(t, p.InsertPosit(positId, appearanceSet, model.Int64Value(42), model.Date(2024, 1, 1)))

	// Force the identity generator's seed beyond every id used above, the
	// way a real database's Thing table would (the facade inserts a Thing
	// row for every identity it allocates, including the role and posit).
	for _, id := range []identity.Thing{roleId, thingId, positId} {
		require.NoError(t, p.InsertThing(id))
	}

	gen := identity.NewGenerator(0)
	roles := keeper.NewRoleKeeper(gen)
	appearances := keeper.NewAppearanceKeeper(gen)
	appearanceSets := keeper.NewAppearanceSetKeeper(gen)
	posits := keeper.NewPositKeeper(gen)
	idx := index.New()

	require.NoError(t, Rehydrate(p, gen, roles, appearances, appearanceSets, posits, idx))

	role, ok := roles.ByName("name")
	require.True(t, ok)
	require.Equal(t, roleId, role.Id)

	posit, ok := posits.ById(positId)
	require.True(t, ok)
	require.Equal(t, model.Int64Value(42), posit.Value)

	require.True(t, idx.RoleToPosit(roleId).Contains(positId))

	// The generator must never hand out an id already observed in the
	// Thing table.
	next := gen.Next()
	require.Greater(t, next, positId)
}

func TestRehydrateEmptyDatabaseIsNotAnError(t *testing.T) {
	p := openTestDB(t)
	gen := identity.NewGenerator(0)
	roles := keeper.NewRoleKeeper(gen)
	appearances := keeper.NewAppearanceKeeper(gen)
	appearanceSets := keeper.NewAppearanceSetKeeper(gen)
	posits := keeper.NewPositKeeper(gen)
	idx := index.New()

	require.NoError(t, Rehydrate(p, gen, roles, appearances, appearanceSets, posits, idx))
	require.Equal(t, 0, roles.Count())
	require.Equal(t, 0, posits.Count())
}
