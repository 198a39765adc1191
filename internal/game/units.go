package game

import (
	"fmt"
	"math"
)

// Movement strategy tags.
const (
	MoveNone      = ""
	MoveHoming    = "homing"
	MoveHomingLOS = "homingLOS"
	MoveCrawler   = "crawler"
	MoveCrawlerN  = "crawlerN"
	MoveCrawlerE  = "crawlerE"
	MoveCrawlerS  = "crawlerS"
	MoveCrawlerW  = "crawlerW"
)

const (
	defaultBodySize = 32.0
	unboundedCoord  = -1.0
)

// Unit is a live entity in the room.
type Unit struct {
	Name        string
	ID          int
	PlayerOwned bool

	// Movement
	Movement            string
	MaxSpeed            float64
	MaxAcceleration     float64
	MaxAngularSpeed     float64
	MinX, MaxX          float64 // -1 = unbounded
	MinY, MaxY          float64
	Rotation            bool
	Path                []Vec2
	CurrentPathIndex    int
	TimeSincePathfindMs float64

	// Health
	Health    float64
	MaxHealth float64
	FlashMs   float64

	// Weapon
	Weapon             string
	WeaponDelay        float64
	CurrentWeaponDelay float64

	// Shop
	Purchasable bool
	Price       int

	// Mods lists the unit-local mods by type.
	Mods map[ModType][]*Mod
	// Attached holds sub-objects riding with the unit, keyed by the id of the
	// mod that created them or noModKey.
	Attached map[int][]*Attachment
	// Laser is the active beam of a laser weapon, nil when not firing.
	Laser *LaserBeam

	Body      *Body
	Destroyed bool

	healthBar *Attachment
}

// Label is the unit's log label, e.g. "chaser#12".
func (u *Unit) Label() string { return fmt.Sprintf("%s#%d", u.Name, u.ID) }

// Center is the body center.
func (u *Unit) Center() Vec2 { return u.Body.Center }

// HealthFraction is health/maxHealth clamped to [0,1].
func (u *Unit) HealthFraction() float64 {
	if u.MaxHealth <= 0 {
		return 0
	}
	return clampf(u.Health/u.MaxHealth, 0, 1)
}

func (u *Unit) attach(key int, a *Attachment) {
	a.Offset = a.Pos.Sub(u.Center())
	u.Attached[key] = append(u.Attached[key], a)
}

// bounds converts the unit's min/max fields into physics body bounds.
func (u *Unit) bounds() *Bounds {
	if u.MinX == unboundedCoord && u.MaxX == unboundedCoord &&
		u.MinY == unboundedCoord && u.MaxY == unboundedCoord {
		return nil
	}
	return &Bounds{MinX: u.MinX, MaxX: u.MaxX, MinY: u.MinY, MaxY: u.MaxY}
}

func (u *Unit) isCrawler() bool {
	switch u.Movement {
	case MoveCrawlerN, MoveCrawlerE, MoveCrawlerS, MoveCrawlerW:
		return true
	}
	return false
}

// InstantiateUnit creates the named unit at loc. wall selects the wall a
// crawler rides on and is ignored for other movement types. Returns nil for an
// unknown template name.
func (s *Session) InstantiateUnit(name string, loc Vec2, wall WallSide) *Unit {
	tmpl, ok := s.Catalog.UnitTemplate(name)
	if !ok {
		s.Log.Add(s.Tick, "--", "--", "unit", "unknown_template", name, 0)
		return nil
	}

	u := &Unit{
		Name:                name,
		ID:                  s.ids.NextID(),
		PlayerOwned:         tmpl.PlayerOwned,
		Movement:            tmpl.Movement,
		MaxSpeed:            tmpl.MaxSpeed,
		MaxAcceleration:     tmpl.MaxAcceleration,
		MaxAngularSpeed:     tmpl.MaxAngularSpeed,
		MinX:                unboundedCoord,
		MaxX:                unboundedCoord,
		MinY:                unboundedCoord,
		MaxY:                unboundedCoord,
		Rotation:            tmpl.Rotation,
		TimeSincePathfindMs: pathfindThrottleMs, // first move queries immediately
		Health:              tmpl.Health,
		MaxHealth:           tmpl.Health,
		Weapon:              tmpl.Weapon,
		WeaponDelay:         s.Catalog.weapon(tmpl.Weapon).Delay,
		Purchasable:         tmpl.Purchasable,
		Price:               tmpl.Price,
		Mods:                map[ModType][]*Mod{},
		Attached:            map[int][]*Attachment{},
	}

	size := tmpl.BodySize
	if size <= 0 {
		size = defaultBodySize
	}
	if tmpl.BodyType == "circle" {
		u.Body = s.World.NewCircle(loc, size)
	} else {
		u.Body = s.World.NewBox(loc, size)
	}
	u.Body.Owner = u
	u.Body.BlockedByWalls = true

	bg := newAttachment("healthBarBg", loc.Add(Vec2{0, -healthBarYPos}), healthBarWidth+2)
	bg.Height = healthBarHeight + 2
	u.healthBar = newAttachment("healthBar", loc.Add(Vec2{0, -healthBarYPos}), healthBarWidth)
	u.healthBar.Height = healthBarHeight
	u.attach(noModKey, bg)
	u.attach(noModKey, u.healthBar)

	if u.Movement == MoveCrawler {
		s.snapCrawler(u, wall)
	}

	s.Units[u.ID] = u
	if u.PlayerOwned {
		s.groups.playerUnits.Add(u.Body)
	} else {
		s.groups.enemyUnits.Add(u.Body)
	}
	switch name {
	case shipUnit:
		s.ship = u
	case targetUnit:
		s.target = u
	}
	s.Log.Add(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "unit", "spawn",
		fmt.Sprintf("(%.0f,%.0f)", loc.X, loc.Y), u.Health)

	for _, spec := range tmpl.Mods {
		s.CreateUnitMod(u, spec)
	}
	for _, m := range s.AllGlobalModsFor(u.PlayerOwned) {
		s.applyOnCreate(u, m)
	}
	return u
}

// snapCrawler turns a generic crawler into its wall-relative variant, faces it
// away from the wall and bounds its traversal to the wall segment it is on.
func (s *Session) snapCrawler(u *Unit, wall WallSide) {
	u.Movement = MoveCrawler + string(wall)
	start := s.Tiles.AtWorld(u.Center())
	if start == nil {
		return
	}
	switch wall {
	case WallNorth:
		u.Body.Rotation = math.Pi / 2
		u.MinX, u.MaxX = s.scanWall(start.Col, start.Row-1, 1, 0)
	case WallEast:
		u.Body.Rotation = math.Pi
		u.MinY, u.MaxY = s.scanWall(start.Col+1, start.Row, 0, 1)
	case WallSouth:
		u.Body.Rotation = 3 * math.Pi / 2
		u.MinX, u.MaxX = s.scanWall(start.Col, start.Row+1, 1, 0)
	case WallWest:
		u.Body.Rotation = 0
		u.MinY, u.MaxY = s.scanWall(start.Col-1, start.Row, 0, 1)
	}
	u.Body.Bounds = u.bounds()
}

// scanWall walks the wall line through (col,row) along (dc,dr) in both
// directions until the first open tile. The crawler may travel up to one tile
// short of each opening. Directions that reach the map edge stay unbounded.
func (s *Session) scanWall(col, row, dc, dr int) (float64, float64) {
	lo, hi := unboundedCoord, unboundedCoord
	size := float64(s.Tiles.Size)
	for c, r := col-dc, row-dr; s.Tiles.inBounds(c, r); c, r = c-dc, r-dr {
		if !s.Tiles.Collides(c, r) {
			t := s.Tiles.At(c, r)
			lo = t.PixelX()*float64(dc) + t.PixelY()*float64(dr) + 1.5*size
			break
		}
	}
	for c, r := col+dc, row+dr; s.Tiles.inBounds(c, r); c, r = c+dc, r+dr {
		if !s.Tiles.Collides(c, r) {
			t := s.Tiles.At(c, r)
			hi = t.PixelX()*float64(dc) + t.PixelY()*float64(dr) - 0.5*size
			break
		}
	}
	return lo, hi
}

// DestroyUnit removes the unit's body, every attachment, its laser beam and
// its local mods. Call exactly once per unit.
func (s *Session) DestroyUnit(u *Unit) {
	u.Destroyed = true
	u.Body.Destroy()
	for key, list := range u.Attached {
		for _, a := range list {
			a.Destroy()
		}
		delete(u.Attached, key)
	}
	if u.Laser != nil {
		u.Laser.destroy()
		u.Laser = nil
	}
	for _, t := range AllModTypes {
		for len(u.Mods[t]) > 0 {
			s.DestroyMod(u.Mods[t][len(u.Mods[t])-1])
		}
	}
	s.Log.Add(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "unit", "destroyed", "", u.Health)
}

// UpdateHealth sets health and max health. A unit whose health drops to zero
// or below is destroyed, exploding first if it carries EXPLODE_ON_DEATH.
func (s *Session) UpdateHealth(u *Unit, health, maxHealth float64) {
	if u.Destroyed {
		return
	}
	decreased := health < u.Health
	u.Health, u.MaxHealth = health, maxHealth
	if u.Health <= 0 {
		if s.HasMod(u, ModExplodeOnDeath) {
			s.createExplosion(u.PlayerOwned, u.Center(), 0)
		}
		s.DestroyUnit(u)
		return
	}
	u.healthBar.Width = healthBarWidth * u.HealthFraction()
	if decreased {
		u.FlashMs = flashMs
	}
}

// TakeDamage applies damage after flat per-hit shield absorption. Shields are
// not depleted by absorbing.
func (s *Session) TakeDamage(u *Unit, damage float64) {
	if damage <= 0 || u.Destroyed {
		return
	}
	for _, m := range u.Mods[ModShield] {
		if damage <= 0 {
			break
		}
		p, ok := m.Props.(ShieldProps)
		if !ok || p.ShieldStrength <= 0 {
			continue
		}
		damage -= p.ShieldStrength
		for _, a := range u.Attached[m.ID] {
			a.Flash()
		}
	}
	if damage <= 0 {
		s.Log.AddVerbose(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "hit", "absorbed", "", 0)
		return
	}
	s.Log.Add(s.Tick, u.Label(), sideLabel(u.PlayerOwned), "hit", "damage", fmt.Sprintf("%.0f", damage), damage)
	s.UpdateHealth(u, u.Health-damage, u.MaxHealth)
}

// HasMod reports whether u has a local mod of type t or a global one applies
// to its side.
func (s *Session) HasMod(u *Unit, t ModType) bool {
	return len(u.Mods[t]) > 0 || s.GlobalHasMod(u.PlayerOwned, t)
}

// AllModsOfType returns u's local mods of type t followed by the global mods
// of type t for its side.
func (s *Session) AllModsOfType(u *Unit, t ModType) []*Mod {
	local := u.Mods[t]
	global := s.GlobalModsOfType(u.PlayerOwned, t)
	out := make([]*Mod, 0, len(local)+len(global))
	out = append(out, local...)
	return append(out, global...)
}
