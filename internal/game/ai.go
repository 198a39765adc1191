package game

import "sort"

// UnitTarget picks the unit u should chase and shoot at. Player units target
// the ship. Enemy units target the defense target unless they carry
// TARGET_ENEMIES, in which case they lock onto the nearest player unit that
// is not the defense target and keep that lock while it lives.
func (s *Session) UnitTarget(u *Unit) *Unit {
	if u.PlayerOwned {
		return s.Ship()
	}
	if locks := s.AllModsOfType(u, ModTargetEnemies); len(locks) > 0 {
		if t := s.lockedTarget(u, locks[0]); t != nil {
			return t
		}
	}
	return s.Target()
}

// lockedTarget validates mod's current lock, re-scanning by distance when the
// locked unit is gone.
func (s *Session) lockedTarget(u *Unit, mod *Mod) *Unit {
	if t := s.GetUnit(mod.Behavior.TargetID); t != nil {
		return t
	}
	mod.Behavior.TargetID = 0
	candidates := s.LiveUnits()
	from := u.Center()
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Center().Dist(from) < candidates[j].Center().Dist(from)
	})
	for _, c := range candidates {
		if c.PlayerOwned && c.Name != targetUnit && c.Body.Alive() {
			mod.Behavior.TargetID = c.ID
			s.Log.Add(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "ai", "lock", c.Label(), float64(c.ID))
			return c
		}
	}
	return nil
}

// TargetPosition is where u should move and aim. With no live target it falls
// back to the last known position of the ship (player units) or the defense
// target (enemy units). The bool is false when nothing has been seen yet.
func (s *Session) TargetPosition(u *Unit) (Vec2, bool) {
	if t := s.UnitTarget(u); t != nil {
		return t.Center(), true
	}
	if u.PlayerOwned {
		return s.lastShipPos, s.shipSeen
	}
	return s.lastTargetPos, s.targetSeen
}

// RandomShipWeapon picks a ship weapon uniformly from the catalog pool.
func (s *Session) RandomShipWeapon() string {
	pool := s.Catalog.ShipWeapons
	if len(pool) == 0 {
		return ""
	}
	return pool[s.rng.Intn(len(pool))]
}

// RandomShipMods picks n distinct ship mods uniformly at random. n is capped
// at the pool size.
func (s *Session) RandomShipMods(n int) []string {
	pool := s.Catalog.ShipModNames()
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}
