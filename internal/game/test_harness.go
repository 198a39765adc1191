package game

import (
	"fmt"
)

// TickMs is the fixed frame delta used by the headless harness (60 fps).
const TickMs = 1000.0 / 60.0

// TestRoom is a headless room harness used by tests and the headless report.
// It drives Room.Update with a fixed delta and supports deterministic seeding
// and structured logging.
type TestRoom struct {
	*Room
	SimLog *SimLog

	catalog   *Catalog
	seed      int64
	roomIndex int
	placed    []*Unit
}

// roomOptionKind controls the pass in which an option is applied.
type roomOptionKind int

const (
	roomOptInfra roomOptionKind = iota // catalog, seed, verbose: applied before the room exists
	roomOptRoom                        // room index, loadout, resources: applied after the room loads
	roomOptUnit                        // place units and buy buffs
	roomOptStart                       // skip the countdown
)

// RoomOption is a builder function applied to a TestRoom during construction.
type RoomOption struct {
	kind roomOptionKind
	fn   func(*TestRoom)
}

// WithCatalog uses cat instead of the embedded catalog.
func WithCatalog(cat *Catalog) RoomOption {
	return RoomOption{roomOptInfra, func(tr *TestRoom) { tr.catalog = cat }}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) RoomOption {
	return RoomOption{roomOptInfra, func(tr *TestRoom) { tr.seed = seed }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) RoomOption {
	return RoomOption{roomOptInfra, func(tr *TestRoom) { tr.SimLog = NewSimLog(v) }}
}

// WithRoomIndex starts at the given catalog room.
func WithRoomIndex(i int) RoomOption {
	return RoomOption{roomOptRoom, func(tr *TestRoom) {
		tr.roomIndex = i
		if err := tr.StartRoom(i); err != nil {
			panic(err)
		}
	}}
}

// WithShipLoadout overrides the rolled ship weapon and mods.
func WithShipLoadout(weapon string, mods ...string) RoomOption {
	return RoomOption{roomOptRoom, func(tr *TestRoom) {
		tr.shipWeapon = weapon
		tr.shipMods = mods
	}}
}

// WithResources sets the starting balance.
func WithResources(n int) RoomOption {
	return RoomOption{roomOptRoom, func(tr *TestRoom) { tr.Economy.Set(n) }}
}

// WithUnit places a player unit at (x, y) free of charge. Crawlers attach to
// the wall next to their tile.
func WithUnit(name string, x, y float64) RoomOption {
	return RoomOption{roomOptUnit, func(tr *TestRoom) {
		tile := tr.Tiles.AtWorld(Vec2{x, y})
		wall := WallNone
		if tile != nil {
			wall = tr.Tiles.WallSideAt(tile.Col, tile.Row)
		}
		if u := tr.InstantiateUnit(name, Vec2{x, y}, wall); u != nil {
			tr.placed = append(tr.placed, u)
		}
	}}
}

// WithBuff activates a shop buff free of charge.
func WithBuff(name string) RoomOption {
	return RoomOption{roomOptUnit, func(tr *TestRoom) {
		if b, ok := tr.Catalog.Buffs[name]; ok {
			tr.roomBuffs[name] = true
			tr.CreateGlobalMod(true, b.Mod)
		}
	}}
}

// WithActive skips the countdown so the ship is in the room from tick 1.
func WithActive() RoomOption {
	return RoomOption{roomOptStart, func(tr *TestRoom) { tr.SkipCountdown() }}
}

// NewTestRoom constructs a TestRoom from the given options in ordered passes:
//  1. Infrastructure (catalog, seed, verbose)
//  2. Room load, then room options
//  3. Units and buffs
//  4. Start
func NewTestRoom(opts ...RoomOption) *TestRoom {
	tr := &TestRoom{
		SimLog: NewSimLog(false),
		seed:   1,
	}
	for _, o := range opts {
		if o.kind == roomOptInfra {
			o.fn(tr)
		}
	}
	if tr.catalog == nil {
		tr.catalog = MustDefaultCatalog()
	}
	r, err := NewRoom(tr.catalog, WithSessionSeed(tr.seed), WithSessionLog(tr.SimLog))
	if err != nil {
		panic(fmt.Sprintf("test room: %v", err))
	}
	tr.Room = r
	for _, kind := range []roomOptionKind{roomOptRoom, roomOptUnit, roomOptStart} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(tr)
			}
		}
	}
	return tr
}

// SkipCountdown runs the room until the ship has spawned.
func (tr *TestRoom) SkipCountdown() {
	if tr.Status() != StatusCountdown {
		return
	}
	tr.Update(tr.TimerMs)
}

// RunTicks advances the room n ticks.
func (tr *TestRoom) RunTicks(n int) {
	for i := 0; i < n; i++ {
		tr.Update(TickMs)
	}
}

// RunUntil advances the room up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (tr *TestRoom) RunUntil(predicate func(*TestRoom) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		tr.Update(TickMs)
		if predicate(tr) {
			return tr.Tick
		}
	}
	return -1
}

// Placed returns the units added with WithUnit, in option order.
func (tr *TestRoom) Placed() []*Unit { return tr.placed }

// UnitsNamed returns the live units with the given template name.
func (tr *TestRoom) UnitsNamed(name string) []*Unit {
	var out []*Unit
	for _, u := range tr.LiveUnits() {
		if u.Name == name {
			out = append(out, u)
		}
	}
	return out
}

// CurrentTick returns the current simulation tick.
func (tr *TestRoom) CurrentTick() int {
	return tr.Tick
}
