package keeper

import (
	"errors"
	"testing"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/identity"
	"github.com/Roenbaeck/bareclad/model"
	"github.com/stretchr/testify/require"
)

func TestRoleKeeperDedup(t *testing.T) {
	gen := identity.NewGenerator(0)
	rk := NewRoleKeeper(gen)

	r1, isNew1 := rk.Keep("name", false)
	require.True(t, isNew1)
	r2, isNew2 := rk.Keep("name", false)
	require.False(t, isNew2)
	require.Equal(t, r1.Id, r2.Id)
	require.Same(t, r1, r2)
}

func TestRoleKeeperForcesReserved(t *testing.T) {
	gen := identity.NewGenerator(0)
	rk := NewRoleKeeper(gen)
	r, _ := rk.Keep(RolePosit, false)
	require.True(t, r.Reserved)

	r2, _ := rk.Keep("custom", false)
	require.False(t, r2.Reserved)
}

func TestAppearanceKeeperRejectsUnknownRole(t *testing.T) {
	gen := identity.NewGenerator(0)
	ak := NewAppearanceKeeper(gen)
	_, _, err := ak.Keep(identity.Thing(1), nil)
	require.True(t, errors.Is(err, bcerr.ErrInvalidAppearance))
}

func TestAppearanceKeeperAllowsUnknownThing(t *testing.T) {
	gen := identity.NewGenerator(0)
	rk := NewRoleKeeper(gen)
	ak := NewAppearanceKeeper(gen)
	role, _ := rk.Keep("name", false)
	// Thing 999 was never separately registered anywhere; still allowed.
	a, isNew, err := ak.Keep(identity.Thing(999), role)
	require.NoError(t, err)
	require.True(t, isNew)
	require.Equal(t, identity.Thing(999), a.ThingId)
}

func TestAppearanceKeeperDedup(t *testing.T) {
	gen := identity.NewGenerator(0)
	rk := NewRoleKeeper(gen)
	ak := NewAppearanceKeeper(gen)
	role, _ := rk.Keep("name", false)
	a1, new1, err := ak.Keep(identity.Thing(1), role)
	require.NoError(t, err)
	require.True(t, new1)
	a2, new2, err := ak.Keep(identity.Thing(1), role)
	require.NoError(t, err)
	require.False(t, new2)
	require.Equal(t, a1.Id, a2.Id)
}

func TestAppearanceSetKeeperRejectsRoleCollision(t *testing.T) {
	gen := identity.NewGenerator(0)
	rk := NewRoleKeeper(gen)
	ak := NewAppearanceKeeper(gen)
	ask := NewAppearanceSetKeeper(gen)
	role, _ := rk.Keep("name", false)
	a1, _, _ := ak.Keep(identity.Thing(1), role)
	a2, _, _ := ak.Keep(identity.Thing(2), role)
	_, _, err := ask.Keep([]*Appearance{a1, a2})
	require.True(t, errors.Is(err, bcerr.ErrRoleCollision))
}

func TestAppearanceSetKeeperCanonicalOrder(t *testing.T) {
	gen := identity.NewGenerator(0)
	rk := NewRoleKeeper(gen)
	ak := NewAppearanceKeeper(gen)
	ask := NewAppearanceSetKeeper(gen)
	roleB, _ := rk.Keep("b", false)
	roleA, _ := rk.Keep("a", false)
	apB, _, _ := ak.Keep(identity.Thing(1), roleB)
	apA, _, _ := ak.Keep(identity.Thing(2), roleA)

	// Insert out of canonical order...
	set1, isNew1, err := ask.Keep([]*Appearance{apB, apA})
	require.NoError(t, err)
	require.True(t, isNew1)

	// ...and the other way; both dedup to the same canonical identity.
	set2, isNew2, err := ask.Keep([]*Appearance{apA, apB})
	require.NoError(t, err)
	require.False(t, isNew2)
	require.Equal(t, set1.Id, set2.Id)

	// Canonical order is role ascending then thing ascending: roleA < roleB.
	require.Equal(t, roleA.Id, set1.Appearances[0].RoleId)
	require.Equal(t, roleB.Id, set1.Appearances[1].RoleId)
}

func TestPositKeeperDedupAndTypeDistinction(t *testing.T) {
	gen := identity.NewGenerator(0)
	rk := NewRoleKeeper(gen)
	ak := NewAppearanceKeeper(gen)
	ask := NewAppearanceSetKeeper(gen)
	pk := NewPositKeeper(gen)

	role, _ := rk.Keep("name", false)
	ap, _, _ := ak.Keep(identity.Thing(1), role)
	set, _, _ := ask.Keep([]*Appearance{ap})

	d, err := model.NewDecimal("42")
	require.NoError(t, err)

	p1, new1 := pk.Keep(set, model.Int64Value(42), model.Date(2023, 1, 1))
	require.True(t, new1)
	p2, new2 := pk.Keep(set, model.Int64Value(42), model.Date(2023, 1, 1))
	require.False(t, new2)
	require.Equal(t, p1.Id, p2.Id)

	// Same numeric value but a different TypeId must not dedup.
	p3, new3 := pk.Keep(set, model.DecimalValue{Decimal: d}, model.Date(2023, 1, 1))
	require.True(t, new3)
	require.NotEqual(t, p1.Id, p3.Id)
}
