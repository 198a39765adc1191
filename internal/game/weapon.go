package game

import "fmt"

// Weapon ids.
const (
	WeaponPeaShooter      = "peaShooter"
	WeaponStraightShooter = "straightShooter"
	WeaponShotgun         = "shotgun"
	WeaponZapper          = "zapper"
	WeaponLaser           = "laser"
)

const (
	shotgunPellets       = 3
	shotgunSpreadRadians = 0.5 // max deviation either side of the bearing
)

// UpdateUnitWeapon counts down u's fire delay and fires at target once it
// reaches zero. A live laser beam is re-tracked to u every frame.
func (s *Session) UpdateUnitWeapon(u *Unit, target Vec2, hasTarget bool, delta float64) {
	if u.Destroyed || u.Weapon == "" {
		return
	}
	if u.Laser != nil {
		s.trackLaser(u)
	}
	if u.CurrentWeaponDelay > 0 {
		u.CurrentWeaponDelay -= delta
		if u.CurrentWeaponDelay > 0 {
			return
		}
	}
	if !hasTarget {
		return
	}

	def := s.Catalog.weapon(u.Weapon)
	center := u.Center()
	bearing := target.Sub(center)
	switch u.Weapon {
	case WeaponPeaShooter:
		s.fireBullet(u, def, bearing)
	case WeaponStraightShooter:
		s.fireBullet(u, def, FromAngle(u.Body.Rotation))
	case WeaponShotgun:
		for i := 0; i < shotgunPellets; i++ {
			spread := (s.rng.Float64()*2 - 1) * shotgunSpreadRadians
			s.fireBullet(u, def, bearing.Rotate(spread))
		}
	case WeaponZapper:
		pm := s.spawnMods(u)
		p := s.createAOE(u.PlayerOwned, WeaponZapper, center, zapperRadius*pm.scale, lifetimeOr(def, zapperLifetimeMs), 0)
		p.apply(pm, damageOr(def))
	case WeaponLaser:
		s.fireLaser(u, def, bearing)
	default:
		return
	}
	u.CurrentWeaponDelay = def.Delay
	s.Log.Add(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "weapon", "fire", u.Weapon, def.Delay)
}

func damageOr(def WeaponDef) float64 {
	if def.Damage > 0 {
		return def.Damage
	}
	return 1
}

func lifetimeOr(def WeaponDef, fallback float64) float64 {
	if def.LifetimeMs > 0 {
		return def.LifetimeMs
	}
	return fallback
}

// fireBullet spawns one bullet from u's center travelling along dir.
func (s *Session) fireBullet(u *Unit, def WeaponDef, dir Vec2) *Projectile {
	if dir.IsZero() {
		dir = FromAngle(u.Body.Rotation)
	}
	pm := s.spawnMods(u)
	speed := def.ProjectileSpeed
	if speed <= 0 {
		speed = defaultBulletSpeed
	}
	p := &Projectile{
		ID:          s.ids.NextID(),
		PlayerOwned: u.PlayerOwned,
		Kind:        KindBullet,
		Source:      u.Weapon,
		Body:        s.World.NewCircle(u.Center(), bulletRadius*pm.scale),
		LifetimeMs:  lifetimeOr(def, bulletLifetimeMs),
	}
	p.apply(pm, damageOr(def))
	p.Body.Velocity = dir.Normalize().Scale(speed)
	p.Body.Rotation = dir.Angle()
	s.registerProjectile(p)
	return p
}

// fireLaser replaces any live beam of u with a new one. Rotating units sweep
// the beam with their facing; others keep the bearing at fire time.
func (s *Session) fireLaser(u *Unit, def WeaponDef, bearing Vec2) {
	if u.Laser != nil {
		u.Laser.destroy()
	}
	pm := s.spawnMods(u)
	beam := &LaserBeam{
		ID:     s.ids.NextID(),
		Angle:  bearing.Angle(),
		Visual: newAttachment("laser", u.Center(), laserSegmentCount*laserSegmentSpacing),
	}
	if u.Rotation {
		beam.Angle = u.Body.Rotation
	}
	lifetime := lifetimeOr(def, defaultLaserLifetime)
	for i := 0; i < laserSegmentCount; i++ {
		seg := &Projectile{
			ID:          beam.ID,
			PlayerOwned: u.PlayerOwned,
			Kind:        KindAOE,
			Source:      WeaponLaser,
			Body:        s.World.NewCircle(u.Center(), laserSegmentRadius),
			LifetimeMs:  lifetime,
		}
		seg.apply(pm, damageOr(def))
		s.registerProjectile(seg)
		beam.Segments = append(beam.Segments, seg)
	}
	u.Laser = beam
	s.trackLaser(u)
	s.Log.AddVerbose(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "weapon", "laser",
		fmt.Sprintf("%d segments", len(beam.Segments)), beam.Angle)
}

// trackLaser lines the beam's segments up from u's center along its angle.
func (s *Session) trackLaser(u *Unit) {
	beam := u.Laser
	if beam.expired() {
		beam.Visual.Destroy()
		u.Laser = nil
		return
	}
	if u.Rotation {
		beam.Angle = u.Body.Rotation
	}
	center := u.Center()
	dir := FromAngle(beam.Angle)
	beam.Visual.Pos = center
	beam.Visual.Rotation = beam.Angle
	for i, seg := range beam.Segments {
		seg.Body.Center = center.Add(dir.Scale(float64(i+1) * laserSegmentSpacing))
		seg.Body.Velocity = Vec2{}
	}
}
