package game

import (
	"fmt"
	"math"
)

const (
	pathfindThrottleMs = 500.0 // min ms between nav queries for an unchanged target
	waypointReachPx    = 16.0  // distance at which a waypoint counts as reached
	crawlerMarginPx    = 10.0  // crawler stops within this of the target coordinate
	dodgeRadiusPx      = 160.0 // DODGE_ENEMIES scan radius
	bulletRadius       = 8.0   // also the LOS clearance half-width at scale 1
	pathGoalEpsilon    = 0.5
)

// UpdateUnitTarget refreshes u's path toward target. A new nav query is issued
// once the throttle interval has elapsed or the target has moved away from the
// current path's endpoint. With no path available the unit heads straight at
// the target.
func (s *Session) UpdateUnitTarget(u *Unit, target Vec2, delta float64) {
	u.TimeSincePathfindMs += delta
	moved := len(u.Path) == 0 || !u.Path[len(u.Path)-1].Eq(target, pathGoalEpsilon)
	if u.TimeSincePathfindMs < pathfindThrottleMs && !moved {
		return
	}
	u.TimeSincePathfindMs = 0
	path := s.Nav.FindPath(u.Center(), target)
	if path == nil {
		s.Log.Add(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "move", "path_fallback",
			fmt.Sprintf("(%.0f,%.0f)", target.X, target.Y), 0)
		path = []Vec2{target}
	}
	u.Path = path
	u.CurrentPathIndex = 0
}

// HomingDirection is the unit direction a body at pos moving with vel should
// accelerate in to reach a stationary target, given its max acceleration.
func HomingDirection(pos, vel, target Vec2, maxAcc float64) Vec2 {
	dir, _ := homingSolution(pos, vel, target, maxAcc)
	return dir
}

// homingSolution aims at where the target will appear to be, from the body's
// frame, after the estimated time to impact. The target is stationary, so the
// relative target velocity is the body's own velocity reversed.
func homingSolution(pos, vel, target Vec2, maxAcc float64) (Vec2, float64) {
	toTarget := target.Sub(pos)
	if vel.IsZero() || maxAcc <= 0 {
		return toTarget.Normalize(), 0
	}
	relVel := vel.Negate()
	closing := relVel.Negate().Dot(toTarget.Normalize())
	eta := -closing/maxAcc + math.Sqrt(closing*closing/(maxAcc*maxAcc)+2*toTarget.Len()/maxAcc)
	impact := target.Add(relVel.Scale(eta))
	return impact.Sub(pos).Normalize(), eta
}

// moveUnit runs one frame of u's movement strategy toward target.
func (s *Session) moveUnit(u *Unit, target Vec2, hasTarget bool, delta float64) {
	b := u.Body
	mult := GetSpeedMultipliers(s.AllModsOfType(u, ModSpeedBuff))
	maxSpeed := u.MaxSpeed * mult.MaxSpeedMultiplier
	maxAcc := u.MaxAcceleration * mult.MaxAccelerationMultiplier
	maxTurn := u.MaxAngularSpeed * mult.MaxAngularSpeedMultiplier * delta / 1000

	if dodgeSpeed, ok := s.updateDodge(u, delta); ok {
		maxSpeed = math.Max(maxSpeed, dodgeSpeed)
	} else if hasTarget {
		switch u.Movement {
		case MoveHoming:
			s.UpdateUnitTarget(u, target, delta)
			s.followPath(u, maxAcc)
			s.faceVelocity(u, maxTurn)
		case MoveHomingLOS:
			if s.hasClearShot(u, target) {
				b.Accel, b.Velocity = Vec2{}, Vec2{}
				s.faceToward(u, target, maxTurn)
			} else {
				s.UpdateUnitTarget(u, target, delta)
				s.followPath(u, maxAcc)
				s.faceVelocity(u, maxTurn)
			}
		case MoveCrawlerN, MoveCrawlerS:
			moveCrawler(u, target.X-b.Center.X, Vec2{1, 0}, maxAcc)
		case MoveCrawlerE, MoveCrawlerW:
			moveCrawler(u, target.Y-b.Center.Y, Vec2{0, 1}, maxAcc)
		default:
			b.Accel, b.Velocity = Vec2{}, Vec2{}
			s.faceToward(u, target, maxTurn)
		}
	} else {
		b.Accel = Vec2{}
	}

	b.Velocity = b.Velocity.Limit(maxSpeed)
	b.Bounds = u.bounds()
	clampToBounds(b)
	if u.FlashMs > 0 {
		u.FlashMs -= delta
	}
	s.Log.AddVerbose(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "move", "velocity",
		fmt.Sprintf("(%.1f,%.1f)", b.Velocity.X, b.Velocity.Y), b.Velocity.Len())
}

// followPath advances along u.Path and accelerates toward the current waypoint.
func (s *Session) followPath(u *Unit, maxAcc float64) {
	b := u.Body
	if len(u.Path) == 0 {
		b.Accel = Vec2{}
		return
	}
	for u.CurrentPathIndex < len(u.Path)-1 && b.Center.Dist(u.Path[u.CurrentPathIndex]) < waypointReachPx {
		u.CurrentPathIndex++
	}
	wp := u.Path[u.CurrentPathIndex]
	b.Accel = HomingDirection(b.Center, b.Velocity, wp, maxAcc).Scale(maxAcc)
}

// hasClearShot reports whether u can see target along a corridor as wide as
// its (scaled) projectiles.
func (s *Session) hasClearShot(u *Unit, target Vec2) bool {
	return HasClearLine(u.Center(), target, 2*bulletRadius*s.projectileScale(u), s.walls)
}

// moveCrawler accelerates along axis toward diff, stopping within the margin.
func moveCrawler(u *Unit, diff float64, axis Vec2, maxAcc float64) {
	b := u.Body
	along := b.Velocity.Dot(axis)
	if math.Abs(diff) <= crawlerMarginPx {
		b.Accel = Vec2{}
		b.Velocity = Vec2{}
		return
	}
	sign := 1.0
	if diff < 0 {
		sign = -1
	}
	b.Accel = axis.Scale(sign * maxAcc)
	b.Velocity = axis.Scale(along)
}

func (s *Session) faceToward(u *Unit, target Vec2, maxTurn float64) {
	if !u.Rotation {
		return
	}
	d := target.Sub(u.Center())
	if d.IsZero() {
		return
	}
	u.Body.Rotation = rotateToward(u.Body.Rotation, d.Angle(), maxTurn)
}

func (s *Session) faceVelocity(u *Unit, maxTurn float64) {
	if !u.Rotation || u.Body.Velocity.IsZero() {
		return
	}
	u.Body.Rotation = rotateToward(u.Body.Rotation, u.Body.Velocity.Angle(), maxTurn)
}

// updateDodge ticks u's DODGE_ENEMIES cooldowns and, when one is ready and an
// opposing body is within range, overrides u's velocity with a dodge. Returns
// the dodge speed and whether a dodge happened.
func (s *Session) updateDodge(u *Unit, delta float64) (float64, bool) {
	var speed float64
	dodged := false
	for _, m := range u.Mods[ModDodgeEnemies] {
		p, ok := m.Props.(DodgeProps)
		if !ok {
			continue
		}
		m.Behavior.CooldownMs -= delta
		if dodged || m.Behavior.CooldownMs > 0 {
			continue
		}
		enemy := s.World.Nearest(u.Center(), dodgeRadiusPx, func(b *Body) bool {
			return opposes(u, b)
		})
		if enemy == nil {
			continue
		}
		var dir Vec2
		if enemy.Velocity.IsZero() {
			dir = u.Center().Sub(enemy.Center).Normalize()
		} else {
			dir = enemy.Velocity.Perp().Normalize()
			if s.rng.Intn(2) == 0 {
				dir = dir.Negate()
			}
		}
		if dir.IsZero() {
			dir = FromAngle(s.rng.Float64() * 2 * math.Pi)
		}
		u.Body.Velocity = dir.Scale(p.DodgeSpeed)
		u.Body.Accel = Vec2{}
		m.Behavior.CooldownMs = p.DodgeCooldownMs
		speed, dodged = p.DodgeSpeed, true
		s.Log.Add(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "move", "dodge",
			fmt.Sprintf("(%.0f,%.0f)", dir.X, dir.Y), p.DodgeSpeed)
	}
	return speed, dodged
}

// opposes reports whether body b belongs to the side opposing u.
func opposes(u *Unit, b *Body) bool {
	switch o := b.Owner.(type) {
	case *Unit:
		return !o.Destroyed && o.PlayerOwned != u.PlayerOwned
	case *Projectile:
		return !o.destroyed && o.PlayerOwned != u.PlayerOwned
	}
	return false
}

// syncAttachments moves every attachment to track its unit's center.
func (s *Session) syncAttachments(delta float64) {
	for _, u := range s.Units {
		if u.Destroyed {
			continue
		}
		for _, list := range u.Attached {
			for _, a := range list {
				a.follow(u.Center(), delta)
			}
		}
	}
}
