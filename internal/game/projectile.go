package game

import "math"

// ProjectileKind separates bullets, consumed on first hit, from AOE areas
// that persist for their lifetime and may hit repeatedly.
type ProjectileKind uint8

const (
	KindBullet ProjectileKind = iota
	KindAOE
)

const (
	bulletLifetimeMs     = 10000.0
	explosionLifetimeMs  = 500.0
	explosionRadius      = 48.0
	zapperLifetimeMs     = 300.0
	zapperRadius         = 64.0
	defaultBulletSpeed   = 200.0
	defaultSlowMs        = 1000.0
	laserSegmentCount    = 40
	laserSegmentSpacing  = 20.0
	laserSegmentRadius   = 8.0
	defaultLaserLifetime = 1000.0
)

// Projectile is a bullet, explosion, zapper burst or laser segment.
type Projectile struct {
	ID          int // shared by every segment of one laser beam
	PlayerOwned bool
	Kind        ProjectileKind
	Source      string // weapon id, "explosion" for on-hit and on-death blasts
	Body        *Body

	// Modifiers frozen from the firing unit at spawn.
	Damage     float64 // base weapon damage plus DamageDiff
	DamageDiff float64
	Exploding  bool
	Ghost      bool
	Scale      float64
	Slow       *SpeedMultipliers

	LifetimeMs float64
	// Consumed marks a bullet that already hit something this tick.
	Consumed  bool
	destroyed bool
}

func (p *Projectile) destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.Body.Destroy()
}

// Destroyed reports whether the projectile is gone.
func (p *Projectile) Destroyed() bool { return p.destroyed }

// LaserBeam is a sustained beam: one visual plus collision segments sharing
// one logical id, re-tracked to the firing unit every frame.
type LaserBeam struct {
	ID       int
	Angle    float64
	Visual   *Attachment
	Segments []*Projectile
}

func (l *LaserBeam) destroy() {
	l.Visual.Destroy()
	for _, seg := range l.Segments {
		seg.destroy()
	}
}

func (l *LaserBeam) expired() bool {
	for _, seg := range l.Segments {
		if !seg.destroyed {
			return false
		}
	}
	return true
}

// projectileMods is the modifier snapshot a firing unit hands its projectiles.
type projectileMods struct {
	ghost      bool
	exploding  bool
	scale      float64
	damageDiff float64
	slow       *SpeedMultipliers
}

// spawnMods folds u's mods into a projectile snapshot, skipping mods the
// weapon is incompatible with.
func (s *Session) spawnMods(u *Unit) projectileMods {
	pm := projectileMods{scale: s.projectileScale(u)}
	compatible := func(t ModType) bool {
		return s.WeaponAndModCompatible(u.Name, u.Weapon, t)
	}
	pm.ghost = s.HasMod(u, ModGhostProjectiles) && compatible(ModGhostProjectiles)
	pm.exploding = s.HasMod(u, ModExplodingProjectiles) && compatible(ModExplodingProjectiles)
	if compatible(ModDamageBuff) {
		for _, m := range s.AllModsOfType(u, ModDamageBuff) {
			if p, ok := m.Props.(DamageBuffProps); ok {
				pm.damageDiff += p.DamageDiff
			}
		}
	}
	if slows := s.AllModsOfType(u, ModSlowingProjectiles); len(slows) > 0 && compatible(ModSlowingProjectiles) {
		sm := GetSpeedMultipliers(slows)
		if sm.SlowDuration <= 0 {
			sm.SlowDuration = defaultSlowMs
		}
		pm.slow = &sm
	}
	return pm
}

// projectileScale is the largest PROJECTILE_SCALE on u, or 1.
func (s *Session) projectileScale(u *Unit) float64 {
	scale := 1.0
	if !s.WeaponAndModCompatible(u.Name, u.Weapon, ModProjectileScale) {
		return scale
	}
	for i, m := range s.AllModsOfType(u, ModProjectileScale) {
		p, ok := m.Props.(ProjectileScaleProps)
		if !ok {
			continue
		}
		if i == 0 {
			scale = p.ProjectileScale
		} else {
			scale = math.Max(scale, p.ProjectileScale)
		}
	}
	if scale <= 0 {
		return 1
	}
	return scale
}

func (p *Projectile) apply(pm projectileMods, baseDamage float64) {
	p.Ghost = pm.ghost
	p.Exploding = pm.exploding
	p.Scale = pm.scale
	p.DamageDiff = pm.damageDiff
	p.Damage = baseDamage + pm.damageDiff
	p.Slow = pm.slow
}

// registerProjectile files p in its side's overlap group and, for bullets
// that do not ghost through walls, in the geometry group.
func (s *Session) registerProjectile(p *Projectile) {
	p.Body.Owner = p
	if p.PlayerOwned {
		s.groups.playerProjectiles.Add(p.Body)
	} else {
		s.groups.enemyProjectiles.Add(p.Body)
	}
	if p.Kind == KindBullet && !p.Ghost {
		s.groups.solidProjectiles.Add(p.Body)
	}
	s.projectiles = append(s.projectiles, p)
}

// createExplosion spawns an AOE blast at the given position.
func (s *Session) createExplosion(playerOwned bool, at Vec2, damageDiff float64) *Projectile {
	return s.createAOE(playerOwned, "explosion", at, explosionRadius, explosionLifetimeMs, 1+damageDiff)
}

func (s *Session) createAOE(playerOwned bool, source string, at Vec2, radius, lifetime, damage float64) *Projectile {
	p := &Projectile{
		ID:          s.ids.NextID(),
		PlayerOwned: playerOwned,
		Kind:        KindAOE,
		Source:      source,
		Body:        s.World.NewCircle(at, radius),
		Damage:      damage,
		Scale:       1,
		LifetimeMs:  lifetime,
	}
	s.registerProjectile(p)
	s.Log.AddVerbose(s.Tick, "--", sideLabel(playerOwned), "weapon", "aoe", source, radius)
	return p
}

// projectileOnHit consumes a bullet, exploding it first when tagged. AOE
// projectiles are unaffected.
func (s *Session) projectileOnHit(p *Projectile) {
	if p.Kind != KindBullet {
		return
	}
	p.Consumed = true
	if p.Exploding {
		s.createExplosion(p.PlayerOwned, p.Body.Center, p.DamageDiff)
	}
	p.destroy()
}

// updateProjectiles counts down lifetimes and drops destroyed projectiles.
func (s *Session) updateProjectiles(delta float64) {
	kept := s.projectiles[:0]
	for _, p := range s.projectiles {
		if !p.destroyed {
			p.LifetimeMs -= delta
			if p.LifetimeMs <= 0 {
				p.destroy()
			}
		}
		if !p.destroyed {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(s.projectiles); i++ {
		s.projectiles[i] = nil
	}
	s.projectiles = kept
}
