package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlapTracker_RetriggersAfterThreshold(t *testing.T) {
	tr := NewOverlapTracker(framesToReOverlap)
	for tick := 0; tick <= framesToReOverlap; tick++ {
		got := tr.Observe(7, 3)
		switch tick {
		case 0, framesToReOverlap:
			assert.True(t, got, "tick %d should trigger", tick)
		default:
			assert.False(t, got, "tick %d should not trigger", tick)
		}
		tr.EndFrame()
	}
}

func TestOverlapTracker_OrderIndependentKey(t *testing.T) {
	tr := NewOverlapTracker(framesToReOverlap)
	assert.True(t, tr.Observe(2, 9))
	tr.EndFrame()
	assert.False(t, tr.Observe(9, 2))
	assert.Equal(t, 2, tr.Counter(2, 9))
}

func TestOverlapTracker_SameFrameRepeatIgnored(t *testing.T) {
	tr := NewOverlapTracker(framesToReOverlap)
	assert.True(t, tr.Observe(1, 2))
	assert.False(t, tr.Observe(1, 2))
	assert.Equal(t, 1, tr.Counter(1, 2), "a repeat report in one frame does not advance the counter")
}

func TestOverlapTracker_OneFrameGapKeepsCooldown(t *testing.T) {
	tr := NewOverlapTracker(framesToReOverlap)
	assert.True(t, tr.Observe(1, 2))
	tr.EndFrame()
	tr.EndFrame() // absent one frame
	assert.False(t, tr.Observe(1, 2))
}

func TestOverlapTracker_TwoFrameGapResets(t *testing.T) {
	tr := NewOverlapTracker(framesToReOverlap)
	assert.True(t, tr.Observe(1, 2))
	tr.EndFrame()
	tr.EndFrame()
	tr.EndFrame() // absent two frames
	assert.Equal(t, 0, tr.ActiveCount())
	assert.True(t, tr.Observe(1, 2))
}

// collide runs one physics step without moving anything, then closes the frame.
func collide(s *Session) {
	s.World.Step(0)
	s.overlaps.EndFrame()
}

func TestContact_DamagesBothOnce(t *testing.T) {
	s := newTestSession(t)
	chaser := s.InstantiateUnit("chaser", Vec2{176, 176}, WallNone)
	ship := s.InstantiateUnit(shipUnit, Vec2{180, 176}, WallNone)

	collide(s)
	assert.Equal(t, 2.0, chaser.Health)
	assert.Equal(t, 29.0, ship.Health)

	for i := 0; i < 10; i++ {
		collide(s)
	}
	assert.Equal(t, 2.0, chaser.Health, "constant overlap waits out the cooldown")
	assert.Equal(t, 1, s.Log.CountCategory("hit", "contact"))
}

func TestContact_NoContactDamageSuppresses(t *testing.T) {
	s := newTestSession(t)
	turret := s.InstantiateUnit("turret", Vec2{176, 176}, WallNone)
	ship := s.InstantiateUnit(shipUnit, Vec2{180, 176}, WallNone)

	collide(s)
	assert.Equal(t, 5.0, turret.Health)
	assert.Equal(t, 30.0, ship.Health)
	assert.Equal(t, 1, s.overlaps.Counter(turret.ID, ship.ID), "the pair is still tracked")
}

func TestContact_DieOnContact(t *testing.T) {
	s := newTestSession(t)
	s.CreateGlobalMod(true, ModSpec{Props: HealthBuffProps{HealthDiff: 5}})
	spike := s.InstantiateUnit("spikeball", Vec2{176, 176}, WallNone)
	require.Equal(t, 6.0, spike.Health)
	ship := s.InstantiateUnit(shipUnit, Vec2{180, 176}, WallNone)

	collide(s)
	assert.True(t, spike.Destroyed)
	assert.Equal(t, 29.0, ship.Health)
}

func TestProjectileHit_ConsumesBulletAndDamages(t *testing.T) {
	s := newTestSession(t)
	turret := s.InstantiateUnit("turret", Vec2{176, 176}, WallNone)
	ship := s.InstantiateUnit(shipUnit, Vec2{300, 176}, WallNone)

	p := s.fireBullet(turret, s.Catalog.weapon(WeaponPeaShooter), Vec2{1, 0})
	p.Body.Center = ship.Center()
	collide(s)

	assert.True(t, p.Consumed)
	assert.True(t, p.Destroyed())
	assert.Equal(t, 29.0, ship.Health)
	assert.True(t, s.Log.HasEntry("hit", "projectile", WeaponPeaShooter))
}

func TestProjectileHit_OneBulletOneUnit(t *testing.T) {
	s := newTestSession(t)
	ship := s.InstantiateUnit(shipUnit, Vec2{340, 300}, WallNone)
	a := s.InstantiateUnit("chaser", Vec2{170, 176}, WallNone)
	b := s.InstantiateUnit("chaser", Vec2{180, 176}, WallNone)

	p := s.fireBullet(ship, s.Catalog.weapon(WeaponPeaShooter), Vec2{-1, 0})
	p.Body.Center = Vec2{175, 176}
	require.True(t, bodiesOverlap(p.Body, a.Body) && bodiesOverlap(p.Body, b.Body))
	collide(s)

	assert.True(t, p.Consumed)
	lost := (a.MaxHealth - a.Health) + (b.MaxHealth - b.Health)
	assert.Equal(t, 1.0, lost, "a bullet overlapping two units damages only one")
	assert.Equal(t, 1, s.Log.CountCategory("hit", "projectile"))
}

func TestProjectileHit_OwnSideIgnored(t *testing.T) {
	s := newTestSession(t)
	turret := s.InstantiateUnit("turret", Vec2{176, 176}, WallNone)
	other := s.InstantiateUnit("chaser", Vec2{300, 176}, WallNone)

	p := s.fireBullet(turret, s.Catalog.weapon(WeaponPeaShooter), Vec2{1, 0})
	p.Body.Center = other.Center()
	collide(s)

	assert.False(t, p.Destroyed())
	assert.Equal(t, 3.0, other.Health)
}

func TestProjectileGeometry_SolidAndGhost(t *testing.T) {
	s := newTestSession(t)
	turret := s.InstantiateUnit("turret", Vec2{176, 176}, WallNone)
	def := s.Catalog.weapon(WeaponPeaShooter)

	solid := s.fireBullet(turret, def, Vec2{1, 0})
	solid.Body.Center = Vec2{16, 176} // inside the west wall
	collide(s)
	assert.True(t, solid.Destroyed())

	s.CreateGlobalMod(true, ModSpec{Props: GhostProjectilesProps{}})
	ghost := s.fireBullet(turret, def, Vec2{1, 0})
	require.True(t, ghost.Ghost)
	ghost.Body.Center = Vec2{16, 176}
	collide(s)
	assert.False(t, ghost.Destroyed(), "ghost bullets pass through walls")
}

func TestProjectileHit_ExplodingSpawnsBlast(t *testing.T) {
	s := newTestSession(t)
	s.CreateGlobalMod(true, ModSpec{Props: ExplodingProjectilesProps{}})
	turret := s.InstantiateUnit("turret", Vec2{176, 176}, WallNone)
	ship := s.InstantiateUnit(shipUnit, Vec2{300, 176}, WallNone)

	p := s.fireBullet(turret, s.Catalog.weapon(WeaponPeaShooter), Vec2{1, 0})
	p.Body.Center = ship.Center()
	collide(s)
	assert.Equal(t, 29.0, ship.Health)

	var blast *Projectile
	for _, q := range s.Projectiles() {
		if q.Source == "explosion" {
			blast = q
		}
	}
	require.NotNil(t, blast)
	assert.True(t, blast.PlayerOwned)

	collide(s)
	assert.Equal(t, 28.0, ship.Health, "the blast hits on the next step")
	assert.False(t, blast.Destroyed(), "area projectiles persist after hitting")
}

func TestProjectileHit_SlowingAppliesTimedSpeedMod(t *testing.T) {
	s := newTestSession(t)
	s.CreateGlobalMod(false, ModSpec{Props: SlowingProjectilesProps{SpeedMultipliers{0.5, 0.5, 1, 2000}}})
	ship := s.InstantiateUnit(shipUnit, Vec2{300, 176}, WallNone)
	chaser := s.InstantiateUnit("chaser", Vec2{176, 176}, WallNone)

	p := s.fireBullet(ship, s.Catalog.weapon(WeaponPeaShooter), Vec2{-1, 0})
	require.NotNil(t, p.Slow)
	p.Body.Center = chaser.Center()
	collide(s)

	require.Len(t, chaser.Mods[ModSpeedBuff], 1)
	slow := chaser.Mods[ModSpeedBuff][0]
	assert.Equal(t, 2000.0, slow.Duration)
	got := GetSpeedMultipliers(s.AllModsOfType(chaser, ModSpeedBuff))
	assert.InDelta(t, 0.5, got.MaxSpeedMultiplier, 1e-9)

	s.PurgeExpiredMods(s.SceneTime + 2000)
	assert.Empty(t, chaser.Mods[ModSpeedBuff])
}

func TestDisconnectDamage_StopsHits(t *testing.T) {
	s := newTestSession(t)
	chaser := s.InstantiateUnit("chaser", Vec2{176, 176}, WallNone)
	s.InstantiateUnit(shipUnit, Vec2{180, 176}, WallNone)

	s.DisconnectDamage()
	collide(s)
	assert.Equal(t, 3.0, chaser.Health)
}
