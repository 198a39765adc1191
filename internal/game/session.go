package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

// Template names the room loop treats specially.
const (
	shipUnit   = "ship"
	targetUnit = "target"
)

// physicsGroups are the body groups colliders and overlaps are registered on.
type physicsGroups struct {
	playerUnits       *Group
	enemyUnits        *Group
	playerProjectiles *Group
	enemyProjectiles  *Group
	solidProjectiles  *Group // projectiles stopped by room geometry
}

// Session owns every piece of mutable simulation state: the id counter, the
// global mod lists, the live units of the current room and the physics world.
// Independent sessions never share state.
type Session struct {
	ID        uuid.UUID
	Catalog   *Catalog
	Log       *SimLog
	SceneTime float64 // ms, advanced by delta every tick
	Tick      int
	Def       RoomDef

	Tiles *TileMap
	Nav   *NavGrid
	World *World
	Units map[int]*Unit

	ids             IDGenerator
	rng             *rand.Rand
	walls           []rect
	groups          physicsGroups
	damageColliders []*Collider
	overlaps        *OverlapTracker
	projectiles     []*Projectile

	timedMods  []*Mod
	playerMods map[ModType][]*Mod
	enemyMods  map[ModType][]*Mod

	ship          *Unit
	target        *Unit
	lastShipPos   Vec2
	lastTargetPos Vec2
	shipSeen      bool
	targetSeen    bool
}

// SessionOption configures a Session at construction.
type SessionOption func(*Session)

// WithSessionSeed seeds the session RNG used by spreads, dodges and loadouts.
func WithSessionSeed(seed int64) SessionOption {
	return func(s *Session) {
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay randomness
	}
}

// WithSessionLog replaces the session's event log.
func WithSessionLog(l *SimLog) SessionOption {
	return func(s *Session) { s.Log = l }
}

// NewSession creates a session over cat with no room loaded.
func NewSession(cat *Catalog, opts ...SessionOption) *Session {
	s := &Session{
		ID:         uuid.New(),
		Catalog:    cat,
		Log:        NewSimLog(false),
		Units:      map[int]*Unit{},
		rng:        rand.New(rand.NewSource(1)), // #nosec G404 -- gameplay randomness
		playerMods: map[ModType][]*Mod{},
		enemyMods:  map[ModType][]*Mod{},
		overlaps:   NewOverlapTracker(framesToReOverlap),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LoadRoom tears down the current room and builds def: tiles, nav grid,
// physics world, colliders, and the defense target.
func (s *Session) LoadRoom(def RoomDef) error {
	tm, err := ParseTileMap(def.Tiles, def.TileSize)
	if err != nil {
		return fmt.Errorf("failed to load room %s: %w", def.Name, err)
	}
	for _, u := range s.sortedUnits() {
		if !u.Destroyed {
			s.DestroyUnit(u)
		}
	}
	for _, p := range s.projectiles {
		p.destroy()
	}

	s.Def = def
	s.Tiles = tm
	s.Nav = NewNavGrid(tm)
	s.walls = tm.SolidRects()
	s.World = NewWorld(tm)
	s.Units = map[int]*Unit{}
	s.projectiles = nil
	s.overlaps = NewOverlapTracker(framesToReOverlap)
	s.ship, s.target = nil, nil
	s.shipSeen, s.targetSeen = false, false
	s.groups = physicsGroups{
		playerUnits:       s.World.NewGroup(),
		enemyUnits:        s.World.NewGroup(),
		playerProjectiles: s.World.NewGroup(),
		enemyProjectiles:  s.World.NewGroup(),
		solidProjectiles:  s.World.NewGroup(),
	}
	s.connectDamage()

	s.Log.Add(s.Tick, "--", "--", "room", "load", def.Name, float64(len(s.walls)))
	if s.InstantiateUnit(targetUnit, def.TargetSpawn, WallNone) == nil {
		return fmt.Errorf("room %s: catalog has no %q unit", def.Name, targetUnit)
	}
	return nil
}

// connectDamage registers the geometry collider and the damage-dealing overlaps.
func (s *Session) connectDamage() {
	g := s.groups
	s.damageColliders = []*Collider{
		s.World.AddGeometryCollider(g.solidProjectiles, s.handleProjectileGeometry),
		s.World.AddOverlap(g.playerProjectiles, g.enemyUnits, s.handleProjectileHit),
		s.World.AddOverlap(g.enemyProjectiles, g.playerUnits, s.handleProjectileHit),
		s.World.AddOverlap(g.enemyUnits, g.playerUnits, s.handleUnitHit),
	}
}

// DisconnectDamage removes every damage-dealing collider and destroys all
// live projectiles, so nothing scores hits after the room is decided.
func (s *Session) DisconnectDamage() {
	for _, c := range s.damageColliders {
		s.World.RemoveCollider(c)
	}
	s.damageColliders = nil
	for _, p := range s.projectiles {
		p.destroy()
	}
	s.projectiles = nil
	for _, u := range s.Units {
		u.Laser = nil
	}
}

// GetUnit returns the live unit with id, or nil.
func (s *Session) GetUnit(id int) *Unit {
	u, ok := s.Units[id]
	if !ok || u.Destroyed || !u.Body.Alive() {
		return nil
	}
	return u
}

// Ship returns the enemy ship if it is alive.
func (s *Session) Ship() *Unit {
	if s.ship == nil || s.ship.Destroyed {
		return nil
	}
	return s.ship
}

// Target returns the defense target if it is alive.
func (s *Session) Target() *Unit {
	if s.target == nil || s.target.Destroyed {
		return nil
	}
	return s.target
}

// LiveUnits returns every live unit ordered by id.
func (s *Session) LiveUnits() []*Unit {
	var out []*Unit
	for _, u := range s.sortedUnits() {
		if !u.Destroyed {
			out = append(out, u)
		}
	}
	return out
}

// Projectiles returns the projectiles still in flight.
func (s *Session) Projectiles() []*Projectile {
	var out []*Projectile
	for _, p := range s.projectiles {
		if !p.destroyed {
			out = append(out, p)
		}
	}
	return out
}

// sortedUnits lists the unit map ordered by id so every pass is deterministic.
func (s *Session) sortedUnits() []*Unit {
	out := make([]*Unit, 0, len(s.Units))
	for _, u := range s.Units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// trackReferencePositions remembers where the ship and target were last seen.
func (s *Session) trackReferencePositions() {
	if sh := s.Ship(); sh != nil {
		s.lastShipPos, s.shipSeen = sh.Center(), true
	}
	if t := s.Target(); t != nil {
		s.lastTargetPos, s.targetSeen = t.Center(), true
	}
}

func sideLabel(playerOwned bool) string {
	if playerOwned {
		return "player"
	}
	return "enemy"
}
