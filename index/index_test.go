package index

import (
	"testing"

	"github.com/Roenbaeck/bareclad/identity"
	"github.com/Roenbaeck/bareclad/keeper"
	"github.com/Roenbaeck/bareclad/model"
	"github.com/stretchr/testify/require"
)

func TestSetAndOr(t *testing.T) {
	a := SetOf(1, 2, 3)
	b := SetOf(2, 3, 4)
	require.Equal(t, []identity.Thing{2, 3}, a.And(b).ToSlice())
	require.Equal(t, []identity.Thing{1, 2, 3, 4}, a.Or(b).ToSlice())
	// originals untouched
	require.Equal(t, []identity.Thing{1, 2, 3}, a.ToSlice())
}

func TestIntersectEmptyIsNil(t *testing.T) {
	require.Nil(t, Intersect())
}

func TestIndexConsistency(t *testing.T) {
	// Builds the minimal keeper graph by hand to exercise index invariant 4
	// (spec §8): for posit p over roles R, posit_to_appearance_set[p]=a and
	// p is a member of role_to_posit[r] for every r in R.
	gen := identity.NewGenerator(0)
	rk := keeper.NewRoleKeeper(gen)
	ak := keeper.NewAppearanceKeeper(gen)
	ask := keeper.NewAppearanceSetKeeper(gen)
	pk := keeper.NewPositKeeper(gen)

	nameRole, _ := rk.Keep("name", false)
	ageRole, _ := rk.Keep("age", false)
	apName, _, _ := ak.Keep(identity.Thing(1), nameRole)
	apAge, _, _ := ak.Keep(identity.Thing(1), ageRole)
	set, _, _ := ask.Keep([]*keeper.Appearance{apName, apAge})
	posit, isNew := pk.Keep(set, model.StringValue("Alice"), model.Date(2023, 1, 1))
	require.True(t, isNew)

	ix := New()
	ix.IndexPosit(posit, set, []string{"name", "age"})

	asId, ok := ix.PositToAppearanceSet(posit.Id)
	require.True(t, ok)
	require.Equal(t, set.Id, asId)

	require.True(t, ix.RoleToPosit(nameRole.Id).Contains(posit.Id))
	require.True(t, ix.RoleToPosit(ageRole.Id).Contains(posit.Id))
	require.True(t, ix.AppearanceSetToPosit(set.Id).Contains(posit.Id))

	tm, ok := ix.PositToTime(posit.Id)
	require.True(t, ok)
	require.True(t, tm.Equal(model.Date(2023, 1, 1)))

	types := ix.ValueTypesForRoleSet([]string{"age", "name"})
	require.True(t, types[model.TypeString])
}
