package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func speedMod(speed, acc float64) *Mod {
	return &Mod{Type: ModSpeedBuff, Props: SpeedBuffProps{SpeedMultipliers{speed, acc, 1, 0}}}
}

func TestGetSpeedMultipliers_AddsAroundBaseline(t *testing.T) {
	got := GetSpeedMultipliers([]*Mod{speedMod(1.5, 1), speedMod(1.3, 1)})
	assert.InDelta(t, 1.8, got.MaxSpeedMultiplier, 1e-9)
	assert.InDelta(t, 1.0, got.MaxAccelerationMultiplier, 1e-9)
	assert.InDelta(t, 1.0, got.MaxAngularSpeedMultiplier, 1e-9)
}

func TestGetSpeedMultipliers_Empty(t *testing.T) {
	assert.Equal(t, NeutralSpeed, GetSpeedMultipliers(nil))
}

func TestGetSpeedMultipliers_FloorsAtZero(t *testing.T) {
	got := GetSpeedMultipliers([]*Mod{speedMod(0.2, 1), speedMod(0.2, 1)})
	assert.Equal(t, 0.0, got.MaxSpeedMultiplier)
}

func TestGetSpeedMultipliers_IgnoresOtherMods(t *testing.T) {
	mods := []*Mod{
		speedMod(2, 1),
		{Type: ModShield, Props: ShieldProps{ShieldStrength: 5}},
		{Type: ModSlowingProjectiles, Props: SlowingProjectilesProps{SpeedMultipliers{0.5, 1, 1, 1500}}},
	}
	got := GetSpeedMultipliers(mods)
	assert.InDelta(t, 1.5, got.MaxSpeedMultiplier, 1e-9)
	assert.Equal(t, 1500.0, got.SlowDuration)
}

func TestPurgeExpiredMods_ExpiresAtDuration(t *testing.T) {
	s := newTestSession(t)
	u := s.Target()
	m := s.CreateUnitMod(u, ModSpec{Duration: 1000, AttachSprite: "shield", Props: ShieldProps{ShieldStrength: 1}})
	require.NotNil(t, m)
	a := u.Attached[m.ID][0]

	s.PurgeExpiredMods(999)
	assert.Len(t, u.Mods[ModShield], 1)
	assert.False(t, a.Destroyed())

	s.PurgeExpiredMods(1000)
	assert.Empty(t, u.Mods[ModShield])
	assert.True(t, a.Destroyed())
	assert.NotContains(t, u.Attached, m.ID)
	assert.Equal(t, 0, s.TimedModCount())
}

func TestPurgeExpiredMods_PermanentSurvives(t *testing.T) {
	s := newTestSession(t)
	u := s.Target()
	s.CreateUnitMod(u, ModSpec{Props: ShieldProps{ShieldStrength: 1}})
	s.CreateGlobalMod(false, ModSpec{Duration: 200, Props: GhostProjectilesProps{}})

	s.PurgeExpiredMods(1e9)
	assert.Len(t, u.Mods[ModShield], 1)
	assert.False(t, s.GlobalHasMod(false, ModGhostProjectiles))
}

func TestCreateGlobalMod_NotLocal(t *testing.T) {
	s := newTestSession(t)
	g := s.CreateGlobalMod(true, ModSpec{Props: ShieldProps{ShieldStrength: 1}})
	require.NotNil(t, g)
	assert.Equal(t, ScopePlayer, g.Scope)
	assert.Nil(t, g.Unit)

	target := s.Target()
	ship := s.InstantiateUnit(shipUnit, Vec2{300, 200}, WallNone)
	assert.Empty(t, target.Mods[ModShield], "global mods are never copied into local lists")
	assert.True(t, s.HasMod(target, ModShield))
	assert.False(t, s.HasMod(ship, ModShield))
	assert.Same(t, g, s.AllModsOfType(target, ModShield)[0])
}

func TestCreateGlobalMod_HealthBuffAppliesToExistingAndNewUnits(t *testing.T) {
	s := newTestSession(t)
	target := s.Target()
	s.CreateGlobalMod(true, ModSpec{Props: HealthBuffProps{HealthDiff: 2}})
	assert.Equal(t, 22.0, target.Health)
	assert.Equal(t, 22.0, target.MaxHealth)

	chaser := s.InstantiateUnit("chaser", Vec2{176, 176}, WallNone)
	assert.Equal(t, 5.0, chaser.Health)

	ship := s.InstantiateUnit(shipUnit, Vec2{300, 200}, WallNone)
	assert.Equal(t, 30.0, ship.Health, "player buffs leave enemies alone")
}

func TestPurgeGlobalMods(t *testing.T) {
	s := newTestSession(t)
	s.CreateGlobalMod(true, ModSpec{Props: DamageBuffProps{DamageDiff: 1}})
	s.CreateGlobalMod(false, ModSpec{Duration: 1000, Props: SpeedBuffProps{NeutralSpeed}})

	s.PurgeGlobalMods()
	assert.Empty(t, s.AllGlobalModsFor(true))
	assert.Empty(t, s.AllGlobalModsFor(false))
	assert.Equal(t, 0, s.TimedModCount())
}

func TestCreateUnitMod_NilPropsIgnored(t *testing.T) {
	s := newTestSession(t)
	assert.Nil(t, s.CreateUnitMod(s.Target(), ModSpec{}))
	assert.Nil(t, s.CreateGlobalMod(true, ModSpec{}))
}

func TestModSpec_DecodeDefaults(t *testing.T) {
	var spec ModSpec
	require.NoError(t, json.Unmarshal([]byte(`{"type":"SPEED_BUFF","duration":500,"props":{"maxSpeedMultiplier":2}}`), &spec))
	assert.Equal(t, ModSpeedBuff, spec.Type())
	assert.Equal(t, 500.0, spec.Duration)
	p, ok := spec.Props.(SpeedBuffProps)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.MaxSpeedMultiplier)
	assert.Equal(t, 1.0, p.MaxAccelerationMultiplier, "missing multipliers default to 1")
}

func TestModSpec_DecodeKeepsExplicitZero(t *testing.T) {
	var spec ModSpec
	require.NoError(t, json.Unmarshal([]byte(`{"type":"SPEED_BUFF","props":{"maxSpeedMultiplier":0,"maxAccelerationMultiplier":0}}`), &spec))
	p, ok := spec.Props.(SpeedBuffProps)
	require.True(t, ok)
	assert.Equal(t, SpeedMultipliers{0, 0, 1, 0}, p.SpeedMultipliers)

	got := GetSpeedMultipliers([]*Mod{{Type: ModSpeedBuff, Props: p}})
	assert.Equal(t, 0.0, got.MaxSpeedMultiplier, "a zero multiplier freezes the unit")
	assert.Equal(t, 0.0, got.MaxAccelerationMultiplier)
	assert.Equal(t, 1.0, got.MaxAngularSpeedMultiplier)
}

func TestModSpec_DecodeMissingPropsIsNeutral(t *testing.T) {
	var spec ModSpec
	require.NoError(t, json.Unmarshal([]byte(`{"type":"SLOWING_PROJECTILES"}`), &spec))
	p, ok := spec.Props.(SlowingProjectilesProps)
	require.True(t, ok)
	assert.Equal(t, NeutralSpeed, p.SpeedMultipliers)
}

func TestGetSpeedMultipliers_ZeroValuedPropsFreeze(t *testing.T) {
	mods := []*Mod{
		{Type: ModSpeedBuff, Props: SpeedBuffProps{SpeedMultipliers{0, 0, 0, 0}}},
		{Type: ModSlowingProjectiles, Props: SlowingProjectilesProps{SpeedMultipliers{0, 1, 1, 500}}},
	}
	got := GetSpeedMultipliers(mods[:1])
	assert.Equal(t, SpeedMultipliers{0, 0, 0, 0}, got)

	got = GetSpeedMultipliers(mods[1:])
	assert.Equal(t, 0.0, got.MaxSpeedMultiplier)
	assert.Equal(t, 1.0, got.MaxAccelerationMultiplier)
	assert.Equal(t, 500.0, got.SlowDuration)
}

func TestModSpec_DecodeUnknownType(t *testing.T) {
	var spec ModSpec
	err := json.Unmarshal([]byte(`{"type":"TELEPORT"}`), &spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEPORT")
}

func TestWeaponAndModCompatible(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.WeaponAndModCompatible("laserTurret", WeaponLaser, ModProjectileScale))
	assert.False(t, s.WeaponAndModCompatible("zapper", WeaponZapper, ModGhostProjectiles))
	assert.True(t, s.WeaponAndModCompatible("turret", WeaponPeaShooter, ModProjectileScale))
	assert.True(t, s.WeaponAndModCompatible("turret", WeaponPeaShooter, ModDamageBuff))
}
