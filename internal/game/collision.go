package game

import (
	"fmt"
	"strconv"
)

const (
	// framesToReOverlap is how many frames of constant overlap pass before the
	// same pair may trigger again. Lets homing units keep damaging the ship and
	// AOE areas hit more than once.
	framesToReOverlap = 60
	contactDamage     = 1.0
)

// OverlapTracker turns continuous overlap reports into discrete, rate-limited
// hit events. Observe is called for every reported pair during a frame and
// EndFrame exactly once after the physics step has delivered all of them.
type OverlapTracker struct {
	threshold int
	active    map[string]int
	current   map[string]bool
	previous  map[string]bool
}

// NewOverlapTracker creates a tracker with the given re-trigger window.
func NewOverlapTracker(threshold int) *OverlapTracker {
	return &OverlapTracker{
		threshold: threshold,
		active:    map[string]int{},
		current:   map[string]bool{},
		previous:  map[string]bool{},
	}
}

func overlapKey(a, b int) string {
	if b < a {
		a, b = b, a
	}
	return strconv.Itoa(a) + "_" + strconv.Itoa(b)
}

// Observe records that a and b overlap this frame and reports whether the
// overlap should trigger. Repeat reports of one pair within a frame never
// trigger twice.
func (t *OverlapTracker) Observe(a, b int) bool {
	key := overlapKey(a, b)
	if t.current[key] {
		return false
	}
	t.current[key] = true
	if n, ok := t.active[key]; ok && n > 0 && n < t.threshold {
		t.active[key] = n + 1
		return false
	}
	t.active[key] = 1
	return true
}

// EndFrame clears the cooldown of pairs absent both this frame and the one
// before, then starts a new frame.
func (t *OverlapTracker) EndFrame() {
	for key := range t.active {
		if !t.current[key] && !t.previous[key] {
			delete(t.active, key)
		}
	}
	t.previous = t.current
	t.current = map[string]bool{}
}

// Counter returns the pair's frame counter; 0 means no cooldown is running.
func (t *OverlapTracker) Counter(a, b int) int {
	return t.active[overlapKey(a, b)]
}

// ActiveCount is the number of pairs with a running cooldown.
func (t *OverlapTracker) ActiveCount() int { return len(t.active) }

// handleProjectileHit is the overlap callback for projectile vs. unit.
func (s *Session) handleProjectileHit(pb, ub *Body) {
	p, ok := pb.Owner.(*Projectile)
	if !ok {
		return
	}
	u, ok := ub.Owner.(*Unit)
	if !ok || u.Destroyed {
		return
	}
	// A consumed bullet already hit another unit this tick.
	if p.Consumed || p.destroyed {
		return
	}
	s.projectileOnHit(p)

	if !s.overlaps.Observe(u.ID, p.ID) {
		return
	}
	s.Log.Add(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "hit", "projectile",
		fmt.Sprintf("%s#%d", p.Source, p.ID), p.Damage)
	s.TakeDamage(u, p.Damage)
	if p.Slow != nil && !u.Destroyed {
		slow := *p.Slow
		s.CreateUnitMod(u, ModSpec{
			Duration: slow.SlowDuration,
			Props:    SpeedBuffProps{SpeedMultipliers{slow.MaxSpeedMultiplier, slow.MaxAccelerationMultiplier, slow.MaxAngularSpeedMultiplier, 0}},
		})
	}
}

// handleUnitHit is the overlap callback for enemy unit vs. player unit.
func (s *Session) handleUnitHit(ab, bb *Body) {
	a, ok := ab.Owner.(*Unit)
	if !ok || a.Destroyed {
		return
	}
	b, ok := bb.Owner.(*Unit)
	if !ok || b.Destroyed {
		return
	}
	if !s.overlaps.Observe(a.ID, b.ID) {
		return
	}
	if s.HasMod(a, ModNoContactDamage) || s.HasMod(b, ModNoContactDamage) {
		s.Log.AddVerbose(s.Tick, a.Label(), sideLabel(a.PlayerOwned), "hit", "contact_suppressed", b.Label(), 0)
		return
	}
	s.Log.Add(s.Tick, a.Label(), sideLabel(a.PlayerOwned), "hit", "contact", b.Label(), contactDamage)
	dieA, dieB := s.HasMod(a, ModDieOnContact), s.HasMod(b, ModDieOnContact)
	s.TakeDamage(a, contactDamage)
	s.TakeDamage(b, contactDamage)
	if dieA && !a.Destroyed {
		s.UpdateHealth(a, 0, a.MaxHealth)
	}
	if dieB && !b.Destroyed {
		s.UpdateHealth(b, 0, b.MaxHealth)
	}
}

// handleProjectileGeometry is the collider callback for projectile vs. room
// geometry. Only non-ghost bullets are registered for it.
func (s *Session) handleProjectileGeometry(pb *Body) {
	p, ok := pb.Owner.(*Projectile)
	if !ok || p.Consumed || p.destroyed {
		return
	}
	s.Log.AddVerbose(s.Tick, "--", sideLabel(p.PlayerOwned), "hit", "geometry", p.Source, 0)
	s.projectileOnHit(p)
}
