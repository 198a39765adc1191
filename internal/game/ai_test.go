package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitTarget_SidesPickDefaults(t *testing.T) {
	s := newTestSession(t)
	chaser := s.InstantiateUnit("chaser", Vec2{176, 176}, WallNone)
	assert.Nil(t, s.UnitTarget(chaser), "no ship yet")

	ship := s.InstantiateUnit(shipUnit, Vec2{300, 176}, WallNone)
	assert.Same(t, ship, s.UnitTarget(chaser))
	assert.Same(t, s.Target(), s.UnitTarget(ship))
}

func TestUnitTarget_LockIsSticky(t *testing.T) {
	s := newTestSession(t)
	ship := s.InstantiateUnit(shipUnit, Vec2{300, 176}, WallNone)
	s.CreateUnitMod(ship, ModSpec{Props: TargetEnemiesProps{}})
	near := s.InstantiateUnit("chaser", Vec2{240, 176}, WallNone)
	far := s.InstantiateUnit("turret", Vec2{80, 240}, WallNone)

	require.Same(t, near, s.UnitTarget(ship))
	assert.Equal(t, near.ID, ship.Mods[ModTargetEnemies][0].Behavior.TargetID)

	far.Body.Center = Vec2{290, 200}
	assert.Same(t, near, s.UnitTarget(ship), "a closer unit does not steal the lock")
	assert.Equal(t, 1, s.Log.CountCategory("ai", "lock"))

	s.DestroyUnit(near)
	assert.Same(t, far, s.UnitTarget(ship), "losing the lock re-scans")
	assert.Equal(t, 2, s.Log.CountCategory("ai", "lock"))
}

func TestUnitTarget_LockSkipsDefenseTarget(t *testing.T) {
	s := newTestSession(t)
	ship := s.InstantiateUnit(shipUnit, Vec2{80, 80}, WallNone)
	s.CreateUnitMod(ship, ModSpec{Props: TargetEnemiesProps{}})

	assert.Same(t, s.Target(), s.UnitTarget(ship), "falls back to the target with nothing to hunt")
	assert.Equal(t, 0, ship.Mods[ModTargetEnemies][0].Behavior.TargetID)
}

func TestUnitTarget_GlobalLockUsesFirstMod(t *testing.T) {
	s := newTestSession(t)
	s.CreateGlobalMod(false, ModSpec{Props: TargetEnemiesProps{}})
	ship := s.InstantiateUnit(shipUnit, Vec2{300, 176}, WallNone)
	chaser := s.InstantiateUnit("chaser", Vec2{240, 176}, WallNone)

	assert.Same(t, chaser, s.UnitTarget(ship))
	assert.Equal(t, chaser.ID, s.AllGlobalModsFor(false)[0].Behavior.TargetID)
}

func TestTargetPosition_FallsBackToLastSeen(t *testing.T) {
	s := newTestSession(t)
	chaser := s.InstantiateUnit("chaser", Vec2{176, 176}, WallNone)
	_, ok := s.TargetPosition(chaser)
	assert.False(t, ok, "nothing seen yet")

	ship := s.InstantiateUnit(shipUnit, Vec2{300, 176}, WallNone)
	s.trackReferencePositions()
	ship.Body.Center = Vec2{320, 200}
	s.DestroyUnit(ship)

	pos, ok := s.TargetPosition(chaser)
	require.True(t, ok)
	assert.Equal(t, Vec2{300, 176}, pos)
}

func TestRandomShipMods_Distinct(t *testing.T) {
	s := newTestSession(t)
	mods := s.RandomShipMods(3)
	require.Len(t, mods, 3)
	seen := map[string]bool{}
	for _, m := range mods {
		assert.False(t, seen[m], "duplicate mod %s", m)
		seen[m] = true
		assert.Contains(t, s.Catalog.ShipMods, m)
	}

	pool := len(s.Catalog.ShipMods)
	assert.Len(t, s.RandomShipMods(pool+5), pool)
	assert.Nil(t, s.RandomShipMods(0))
}

func TestRandomShipWeapon_FromPool(t *testing.T) {
	s := newTestSession(t)
	for i := 0; i < 20; i++ {
		assert.Contains(t, s.Catalog.ShipWeapons, s.RandomShipWeapon())
	}
}
