package game

import "math"

// ModScope says who a Mod applies to. Exactly one scope is set per Mod.
type ModScope uint8

const (
	ScopeUnit   ModScope = iota // attached to Mod.Unit only
	ScopePlayer                 // every player-owned unit
	ScopeEnemy                  // every non-player unit
)

func (s ModScope) String() string {
	switch s {
	case ScopeUnit:
		return "unit"
	case ScopePlayer:
		return "player"
	case ScopeEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// ModBehavior is mutable per-mod state that the simulation writes back while
// the mod is active. It is kept apart from the numeric Props.
type ModBehavior struct {
	// CooldownMs counts down to the next dodge for DODGE_ENEMIES.
	CooldownMs float64
	// TargetID is the unit locked by TARGET_ENEMIES, 0 when unlocked.
	TargetID int
}

// Mod is a timed or permanent modifier on one unit or on a whole side.
type Mod struct {
	ID        int
	Type      ModType
	StartTime float64
	Scope     ModScope
	Unit      *Unit // set only for ScopeUnit
	Duration  float64
	Sprite    string
	Props     ModProps
	Behavior  ModBehavior
}

// Expired reports whether a duration-bearing mod has run out at now.
func (m *Mod) Expired(now float64) bool {
	return m.Duration > 0 && now-m.StartTime >= m.Duration
}

func (s *Session) newMod(spec ModSpec) *Mod {
	return &Mod{
		ID:        s.ids.NextID(),
		Type:      spec.Type(),
		StartTime: s.SceneTime,
		Duration:  spec.Duration,
		Sprite:    spec.AttachSprite,
		Props:     spec.Props,
	}
}

// CreateUnitMod attaches a new mod to unit and applies any on-creation effect.
func (s *Session) CreateUnitMod(unit *Unit, spec ModSpec) *Mod {
	if unit == nil || spec.Props == nil {
		return nil
	}
	mod := s.newMod(spec)
	mod.Scope = ScopeUnit
	mod.Unit = unit
	if mod.Duration > 0 {
		s.timedMods = append(s.timedMods, mod)
	}
	if mod.Sprite != "" {
		unit.attach(mod.ID, newAttachment(mod.Sprite, unit.Center(), 0))
	}
	unit.Mods[mod.Type] = append(unit.Mods[mod.Type], mod)
	s.applyOnCreate(unit, mod)
	s.Log.Add(s.Tick, unit.Label(), sideLabel(unit.PlayerOwned), "mod", "create", string(mod.Type), mod.Duration)
	return mod
}

// CreateGlobalMod creates a mod affecting every unit on one side and applies
// on-creation effects to the units already alive on that side.
func (s *Session) CreateGlobalMod(playerOwned bool, spec ModSpec) *Mod {
	if spec.Props == nil {
		return nil
	}
	mod := s.newMod(spec)
	mod.Scope = ScopeEnemy
	if playerOwned {
		mod.Scope = ScopePlayer
	}
	if mod.Duration > 0 {
		s.timedMods = append(s.timedMods, mod)
	}
	list := s.globalList(playerOwned)
	list[mod.Type] = append(list[mod.Type], mod)
	for _, u := range s.sortedUnits() {
		if u.PlayerOwned == playerOwned && !u.Destroyed {
			s.applyOnCreate(u, mod)
		}
	}
	s.Log.Add(s.Tick, "--", sideLabel(playerOwned), "mod", "create_global", string(mod.Type), mod.Duration)
	return mod
}

// applyOnCreate runs the one-shot effect of mod on u.
func (s *Session) applyOnCreate(u *Unit, mod *Mod) {
	if p, ok := mod.Props.(HealthBuffProps); ok && p.HealthDiff != 0 {
		s.UpdateHealth(u, u.Health+p.HealthDiff, u.MaxHealth+p.HealthDiff)
	}
}

func (s *Session) globalList(playerOwned bool) map[ModType][]*Mod {
	if playerOwned {
		return s.playerMods
	}
	return s.enemyMods
}

// PurgeExpiredMods destroys every timed mod that has run out at now.
func (s *Session) PurgeExpiredMods(now float64) {
	for i := len(s.timedMods) - 1; i >= 0; i-- {
		if i >= len(s.timedMods) {
			// Destroying a mod can cascade into removing others.
			continue
		}
		mod := s.timedMods[i]
		if mod.Expired(now) {
			s.DestroyMod(mod)
		}
	}
}

// PurgeGlobalMods destroys all global mods on both sides.
func (s *Session) PurgeGlobalMods() {
	for _, list := range []map[ModType][]*Mod{s.playerMods, s.enemyMods} {
		for _, t := range AllModTypes {
			for len(list[t]) > 0 {
				s.DestroyMod(list[t][len(list[t])-1])
			}
		}
	}
}

// DestroyMod removes mod from the list its scope files it under, drops it
// from the expiry list and destroys any attachments it created.
func (s *Session) DestroyMod(mod *Mod) {
	switch mod.Scope {
	case ScopeUnit:
		u := mod.Unit
		u.Mods[mod.Type] = removeMod(u.Mods[mod.Type], mod)
		if attached, ok := u.Attached[mod.ID]; ok {
			for _, a := range attached {
				a.Destroy()
			}
			delete(u.Attached, mod.ID)
		}
	case ScopePlayer:
		s.playerMods[mod.Type] = removeMod(s.playerMods[mod.Type], mod)
	case ScopeEnemy:
		s.enemyMods[mod.Type] = removeMod(s.enemyMods[mod.Type], mod)
	}
	if mod.Duration > 0 {
		s.timedMods = removeMod(s.timedMods, mod)
	}
	s.Log.AddVerbose(s.Tick, "--", mod.Scope.String(), "mod", "destroy", string(mod.Type), 0)
}

func removeMod(list []*Mod, mod *Mod) []*Mod {
	for i, m := range list {
		if m.ID == mod.ID {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// GlobalHasMod reports whether a global mod of type t covers the side.
func (s *Session) GlobalHasMod(playerOwned bool, t ModType) bool {
	return len(s.globalList(playerOwned)[t]) > 0
}

// GlobalModsOfType returns the global mods of type t for the side.
func (s *Session) GlobalModsOfType(playerOwned bool, t ModType) []*Mod {
	return s.globalList(playerOwned)[t]
}

// AllGlobalModsFor returns every global mod for the side, in ModType order.
func (s *Session) AllGlobalModsFor(playerOwned bool) []*Mod {
	var out []*Mod
	list := s.globalList(playerOwned)
	for _, t := range AllModTypes {
		out = append(out, list[t]...)
	}
	return out
}

// TimedModCount is the number of mods waiting to expire.
func (s *Session) TimedModCount() int { return len(s.timedMods) }

// WeaponAndModCompatible reports whether a mod type makes sense for a unit's
// weapon. Weapons and unit templates may both list incompatible mod types.
func (s *Session) WeaponAndModCompatible(unitName, weaponID string, t ModType) bool {
	if w, ok := s.Catalog.Weapons[weaponID]; ok {
		for _, bad := range w.IncompatibleMods {
			if bad == t {
				return false
			}
		}
	}
	if tmpl, ok := s.Catalog.Units[unitName]; ok {
		for _, bad := range tmpl.IncompatibleMods {
			if bad == t {
				return false
			}
		}
	}
	return true
}

// GetSpeedMultipliers folds speed-affecting mods into one set of multipliers.
// Each mod contributes (m-1) around a baseline of 1, so +50% and +30% make
// +80%. Results are floored at 0. SlowDuration is the largest seen.
func GetSpeedMultipliers(mods []*Mod) SpeedMultipliers {
	out := NeutralSpeed
	for _, m := range mods {
		var sm SpeedMultipliers
		switch p := m.Props.(type) {
		case SpeedBuffProps:
			sm = p.SpeedMultipliers
		case SlowingProjectilesProps:
			sm = p.SpeedMultipliers
		default:
			continue
		}
		out.MaxSpeedMultiplier += sm.MaxSpeedMultiplier - 1
		out.MaxAccelerationMultiplier += sm.MaxAccelerationMultiplier - 1
		out.MaxAngularSpeedMultiplier += sm.MaxAngularSpeedMultiplier - 1
		out.SlowDuration = math.Max(out.SlowDuration, sm.SlowDuration)
	}
	out.MaxSpeedMultiplier = math.Max(0, out.MaxSpeedMultiplier)
	out.MaxAccelerationMultiplier = math.Max(0, out.MaxAccelerationMultiplier)
	out.MaxAngularSpeedMultiplier = math.Max(0, out.MaxAngularSpeedMultiplier)
	return out
}
