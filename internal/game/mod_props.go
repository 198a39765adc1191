package game

import (
	"encoding/json"
	"fmt"
)

// ModType identifies what a Mod does.
type ModType string

const (
	ModShield               ModType = "SHIELD"
	ModDodgeEnemies         ModType = "DODGE_ENEMIES"
	ModTargetEnemies        ModType = "TARGET_ENEMIES"
	ModProjectileScale      ModType = "PROJECTILE_SCALE"
	ModGhostProjectiles     ModType = "GHOST_PROJECTILES"
	ModExplodingProjectiles ModType = "EXPLODING_PROJECTILES"
	ModNoContactDamage      ModType = "NO_CONTACT_DAMAGE"
	ModDieOnContact         ModType = "DIE_ON_CONTACT"
	ModDamageBuff           ModType = "DAMAGE_BUFF"
	ModHealthBuff           ModType = "HEALTH_BUFF"
	ModExplodeOnDeath       ModType = "EXPLODE_ON_DEATH"
	ModSpeedBuff            ModType = "SPEED_BUFF"
	ModSlowingProjectiles   ModType = "SLOWING_PROJECTILES"
)

// AllModTypes lists every ModType in declaration order.
var AllModTypes = []ModType{
	ModShield, ModDodgeEnemies, ModTargetEnemies, ModProjectileScale,
	ModGhostProjectiles, ModExplodingProjectiles, ModNoContactDamage,
	ModDieOnContact, ModDamageBuff, ModHealthBuff, ModExplodeOnDeath,
	ModSpeedBuff, ModSlowingProjectiles,
}

// ModProps is the type-specific payload of a Mod. Each ModType has exactly
// one implementation; ModType() names it.
type ModProps interface {
	ModType() ModType
}

type ShieldProps struct {
	ShieldStrength float64 `json:"shieldStrength"`
}

type DodgeProps struct {
	DodgeCooldownMs float64 `json:"dodgeCooldownMs"`
	DodgeSpeed      float64 `json:"dodgeSpeed"`
}

// TargetEnemiesProps has no tuning; the locked target lives in Mod.Behavior.
type TargetEnemiesProps struct{}

type ProjectileScaleProps struct {
	ProjectileScale float64 `json:"projectileScale"`
}

type GhostProjectilesProps struct{}

type ExplodingProjectilesProps struct{}

type NoContactDamageProps struct{}

type DieOnContactProps struct{}

type DamageBuffProps struct {
	DamageDiff float64 `json:"damageDiff"`
}

type HealthBuffProps struct {
	HealthDiff float64 `json:"healthDiff"`
}

type ExplodeOnDeathProps struct{}

type SpeedBuffProps struct {
	SpeedMultipliers
}

// SlowingProjectilesProps describes the slow applied by projectiles of the
// carrier: multipliers below 1 for SlowDuration ms.
type SlowingProjectilesProps struct {
	SpeedMultipliers
}

func (ShieldProps) ModType() ModType               { return ModShield }
func (DodgeProps) ModType() ModType                { return ModDodgeEnemies }
func (TargetEnemiesProps) ModType() ModType        { return ModTargetEnemies }
func (ProjectileScaleProps) ModType() ModType      { return ModProjectileScale }
func (GhostProjectilesProps) ModType() ModType     { return ModGhostProjectiles }
func (ExplodingProjectilesProps) ModType() ModType { return ModExplodingProjectiles }
func (NoContactDamageProps) ModType() ModType      { return ModNoContactDamage }
func (DieOnContactProps) ModType() ModType         { return ModDieOnContact }
func (DamageBuffProps) ModType() ModType           { return ModDamageBuff }
func (HealthBuffProps) ModType() ModType           { return ModHealthBuff }
func (ExplodeOnDeathProps) ModType() ModType       { return ModExplodeOnDeath }
func (SpeedBuffProps) ModType() ModType            { return ModSpeedBuff }
func (SlowingProjectilesProps) ModType() ModType   { return ModSlowingProjectiles }

// SpeedMultipliers scales a unit's kinematic limits. Multipliers missing from
// JSON decode as 1 (no change); an explicit 0 stays 0.
type SpeedMultipliers struct {
	MaxSpeedMultiplier        float64 `json:"maxSpeedMultiplier"`
	MaxAccelerationMultiplier float64 `json:"maxAccelerationMultiplier"`
	MaxAngularSpeedMultiplier float64 `json:"maxAngularSpeedMultiplier"`
	SlowDuration              float64 `json:"slowDuration"`
}

// NeutralSpeed is the identity SpeedMultipliers.
var NeutralSpeed = SpeedMultipliers{1, 1, 1, 0}

// UnmarshalJSON starts from NeutralSpeed so only fields present in data
// override it.
func (m *SpeedMultipliers) UnmarshalJSON(data []byte) error {
	type plain SpeedMultipliers
	v := plain(NeutralSpeed)
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = SpeedMultipliers(v)
	return nil
}

// ModSpec is everything needed to create a Mod: the shared fields plus the
// typed props. Content catalogs decode into ModSpec.
type ModSpec struct {
	Duration     float64 // ms; 0 means the mod never expires on its own
	AttachSprite string
	Props        ModProps
}

// Type is the ModType carried by the props.
func (s ModSpec) Type() ModType {
	if s.Props == nil {
		return ""
	}
	return s.Props.ModType()
}

type modSpecJSON struct {
	Type         ModType         `json:"type"`
	Duration     float64         `json:"duration"`
	AttachSprite string          `json:"attachSprite"`
	Props        json.RawMessage `json:"props"`
}

// UnmarshalJSON decodes {"type", "duration", "attachSprite", "props"} into
// the props variant matching type.
func (s *ModSpec) UnmarshalJSON(data []byte) error {
	var raw modSpecJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	props, err := decodeModProps(raw.Type, raw.Props)
	if err != nil {
		return err
	}
	*s = ModSpec{Duration: raw.Duration, AttachSprite: raw.AttachSprite, Props: props}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (s ModSpec) MarshalJSON() ([]byte, error) {
	props, err := json.Marshal(s.Props)
	if err != nil {
		return nil, err
	}
	return json.Marshal(modSpecJSON{Type: s.Type(), Duration: s.Duration, AttachSprite: s.AttachSprite, Props: props})
}

func decodeModProps(t ModType, raw json.RawMessage) (ModProps, error) {
	var p ModProps
	switch t {
	case ModShield:
		p = &ShieldProps{}
	case ModDodgeEnemies:
		p = &DodgeProps{}
	case ModTargetEnemies:
		return TargetEnemiesProps{}, nil
	case ModProjectileScale:
		p = &ProjectileScaleProps{}
	case ModGhostProjectiles:
		return GhostProjectilesProps{}, nil
	case ModExplodingProjectiles:
		return ExplodingProjectilesProps{}, nil
	case ModNoContactDamage:
		return NoContactDamageProps{}, nil
	case ModDieOnContact:
		return DieOnContactProps{}, nil
	case ModDamageBuff:
		p = &DamageBuffProps{}
	case ModHealthBuff:
		p = &HealthBuffProps{}
	case ModExplodeOnDeath:
		return ExplodeOnDeathProps{}, nil
	case ModSpeedBuff:
		p = &SpeedBuffProps{NeutralSpeed}
	case ModSlowingProjectiles:
		p = &SlowingProjectilesProps{NeutralSpeed}
	default:
		return nil, fmt.Errorf("unknown mod type %q", t)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("decode %s props: %w", t, err)
		}
	}
	return derefProps(p), nil
}

// derefProps stores props by value so a Mod never aliases catalog data.
func derefProps(p ModProps) ModProps {
	switch v := p.(type) {
	case *ShieldProps:
		return *v
	case *DodgeProps:
		return *v
	case *ProjectileScaleProps:
		return *v
	case *DamageBuffProps:
		return *v
	case *HealthBuffProps:
		return *v
	case *SpeedBuffProps:
		return *v
	case *SlowingProjectilesProps:
		return *v
	}
	return p
}
