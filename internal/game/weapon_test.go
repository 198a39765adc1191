package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateUnitWeapon_FiresWhenDelayElapses(t *testing.T) {
	s := newTestSession(t)
	turret := s.InstantiateUnit("turret", Vec2{176, 176}, WallNone)
	aim := Vec2{300, 176}

	s.UpdateUnitWeapon(turret, aim, true, 250)
	require.Len(t, s.Projectiles(), 1, "a fresh unit fires at once")
	assert.Equal(t, turret.WeaponDelay, turret.CurrentWeaponDelay)

	for i := 0; i < 3; i++ {
		s.UpdateUnitWeapon(turret, aim, true, 250)
	}
	assert.Len(t, s.Projectiles(), 1)

	s.UpdateUnitWeapon(turret, aim, true, 250)
	assert.Len(t, s.Projectiles(), 2, "fires on the frame the delay reaches zero")
	assert.Equal(t, 2, s.Log.CountCategory("weapon", "fire"))
}

func TestUpdateUnitWeapon_HoldsWithoutTarget(t *testing.T) {
	s := newTestSession(t)
	turret := s.InstantiateUnit("turret", Vec2{176, 176}, WallNone)
	turret.CurrentWeaponDelay = 100

	s.UpdateUnitWeapon(turret, Vec2{}, false, 250)
	assert.Empty(t, s.Projectiles())
	assert.LessOrEqual(t, turret.CurrentWeaponDelay, 0.0, "the delay still runs down")

	s.UpdateUnitWeapon(turret, Vec2{300, 176}, true, TickMs)
	assert.Len(t, s.Projectiles(), 1)
}

func TestPeaShooter_AimsAtTarget(t *testing.T) {
	s := newTestSession(t)
	s.CreateGlobalMod(true, ModSpec{Props: DamageBuffProps{DamageDiff: 1}})
	turret := s.InstantiateUnit("turret", Vec2{176, 176}, WallNone)

	s.UpdateUnitWeapon(turret, Vec2{176, 276}, true, TickMs)
	ps := s.Projectiles()
	require.Len(t, ps, 1)
	assert.InDelta(t, 0, ps[0].Body.Velocity.X, 1e-9)
	assert.InDelta(t, 200, ps[0].Body.Velocity.Y, 1e-9)
	assert.Equal(t, 2.0, ps[0].Damage)
	assert.Equal(t, KindBullet, ps[0].Kind)
}

func TestStraightShooter_FiresAlongFacing(t *testing.T) {
	s := newTestSession(t, pillarRoom...)
	crawler := s.InstantiateUnit("crawler", Vec2{144, 112}, WallNorth)

	s.UpdateUnitWeapon(crawler, Vec2{0, 0}, true, TickMs)
	ps := s.Projectiles()
	require.Len(t, ps, 1)
	assert.InDelta(t, 0, ps[0].Body.Velocity.X, 1e-9)
	assert.InDelta(t, 220, ps[0].Body.Velocity.Y, 1e-9, "straight out of the wall, ignoring the aim point")
}

func TestShotgun_SpreadsPellets(t *testing.T) {
	s := newTestSession(t)
	ship := s.InstantiateUnit(shipUnit, Vec2{176, 176}, WallNone)
	ship.Weapon = WeaponShotgun

	s.UpdateUnitWeapon(ship, Vec2{300, 176}, true, TickMs)
	ps := s.Projectiles()
	require.Len(t, ps, shotgunPellets)
	for _, p := range ps {
		assert.False(t, p.PlayerOwned)
		assert.LessOrEqual(t, math.Abs(p.Body.Velocity.Angle()), shotgunSpreadRadians+1e-9)
		assert.InDelta(t, 180, p.Body.Velocity.Len(), 1e-9)
	}
	assert.Equal(t, 1, s.Log.CountCategory("weapon", "fire"), "one volley")
}

func TestZapper_BurstAroundUnit(t *testing.T) {
	s := newTestSession(t)
	s.CreateGlobalMod(true, ModSpec{Props: ProjectileScaleProps{ProjectileScale: 2}})
	zapper := s.InstantiateUnit("zapper", Vec2{176, 176}, WallNone)

	s.UpdateUnitWeapon(zapper, Vec2{300, 176}, true, TickMs)
	ps := s.Projectiles()
	require.Len(t, ps, 1)
	assert.Equal(t, KindAOE, ps[0].Kind)
	assert.Equal(t, Vec2{176, 176}, ps[0].Body.Center)
	assert.Equal(t, zapperRadius*2, ps[0].Body.Radius)
	assert.Equal(t, 300.0, ps[0].LifetimeMs)

	s.updateProjectiles(300)
	assert.Empty(t, s.Projectiles())
}

func TestLaser_SegmentsShareOneID(t *testing.T) {
	s := newTestSession(t)
	lt := s.InstantiateUnit("laserTurret", Vec2{64, 176}, WallNone)

	s.UpdateUnitWeapon(lt, Vec2{300, 176}, true, TickMs)
	require.NotNil(t, lt.Laser)
	segs := lt.Laser.Segments
	require.Len(t, segs, laserSegmentCount)
	for i, seg := range segs {
		assert.Equal(t, lt.Laser.ID, seg.ID)
		assert.Equal(t, KindAOE, seg.Kind)
		assert.InDelta(t, 64+float64(i+1)*laserSegmentSpacing, seg.Body.Center.X, 1e-9)
		assert.InDelta(t, 176, seg.Body.Center.Y, 1e-9)
	}
}

func TestLaser_SweepsWithRotation(t *testing.T) {
	s := newTestSession(t)
	lt := s.InstantiateUnit("laserTurret", Vec2{64, 176}, WallNone)
	s.UpdateUnitWeapon(lt, Vec2{300, 176}, true, TickMs)

	lt.Body.Rotation = math.Pi / 2
	s.UpdateUnitWeapon(lt, Vec2{300, 176}, true, TickMs)
	first := lt.Laser.Segments[0]
	assert.InDelta(t, 64, first.Body.Center.X, 1e-9)
	assert.InDelta(t, 176+laserSegmentSpacing, first.Body.Center.Y, 1e-9)
}

func TestLaser_RefireReplacesBeam(t *testing.T) {
	s := newTestSession(t)
	lt := s.InstantiateUnit("laserTurret", Vec2{64, 176}, WallNone)
	s.UpdateUnitWeapon(lt, Vec2{300, 176}, true, TickMs)
	old := lt.Laser

	lt.CurrentWeaponDelay = 0
	s.UpdateUnitWeapon(lt, Vec2{300, 176}, true, TickMs)
	assert.NotSame(t, old, lt.Laser)
	assert.True(t, old.expired())
	assert.Len(t, s.Projectiles(), laserSegmentCount)
}

func TestLaser_ExpiresAfterLifetime(t *testing.T) {
	s := newTestSession(t)
	lt := s.InstantiateUnit("laserTurret", Vec2{64, 176}, WallNone)
	s.UpdateUnitWeapon(lt, Vec2{300, 176}, true, TickMs)
	visual := lt.Laser.Visual

	s.updateProjectiles(1000)
	s.UpdateUnitWeapon(lt, Vec2{300, 176}, true, TickMs)
	assert.Nil(t, lt.Laser)
	assert.True(t, visual.Destroyed())
}

func TestSpawnMods_SkipsIncompatible(t *testing.T) {
	s := newTestSession(t)
	s.CreateGlobalMod(true, ModSpec{Props: GhostProjectilesProps{}})
	s.CreateGlobalMod(true, ModSpec{Props: ProjectileScaleProps{ProjectileScale: 3}})
	lt := s.InstantiateUnit("laserTurret", Vec2{64, 176}, WallNone)
	turret := s.InstantiateUnit("turret", Vec2{176, 240}, WallNone)

	pm := s.spawnMods(lt)
	assert.False(t, pm.ghost)
	assert.Equal(t, 1.0, pm.scale)

	pm = s.spawnMods(turret)
	assert.True(t, pm.ghost)
	assert.Equal(t, 3.0, pm.scale)
}
