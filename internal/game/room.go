package game

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// RoomStatus is the room state machine's state.
type RoomStatus string

const (
	StatusCountdown RoomStatus = "countdown"
	StatusActive    RoomStatus = "active"
	StatusVictory   RoomStatus = "victory"
	StatusDefeat    RoomStatus = "defeat"
)

// Room state machine events.
const (
	evSpawn   = "spawn"
	evWin     = "win"
	evLose    = "lose"
	evNext    = "next"
	evRestart = "restart"
)

const (
	defaultCountdownMs = 5000.0
	defaultTimeLimitMs = 60000.0
	transitionDelayMs  = 5000.0
	spawnShieldMs      = 3000.0
	spawnShieldPower   = 1000.0 // absorbs any single hit
)

// Room drives a Session through countdown, active play and the
// victory/defeat transition, and owns the player's economy.
type Room struct {
	*Session
	Economy *Economy

	machine      *fsm.FSM
	index        int
	TimerMs      float64
	transitionMs float64
	shipWeapon   string
	shipMods     []string
	roomBuffs    map[string]bool

	statusListeners []func(RoomStatus)
	timerListeners  []func(float64)
	weaponListeners []func(string)
	modListeners    []func([]string)
	lastTimerShown  float64
}

// NewRoom creates a session over cat and starts the first room.
func NewRoom(cat *Catalog, opts ...SessionOption) (*Room, error) {
	r := &Room{
		Session: NewSession(cat, opts...),
		Economy: NewEconomy(startingResources),
	}
	r.machine = fsm.NewFSM(
		string(StatusCountdown),
		fsm.Events{
			{Name: evSpawn, Src: []string{string(StatusCountdown)}, Dst: string(StatusActive)},
			{Name: evWin, Src: []string{string(StatusActive)}, Dst: string(StatusVictory)},
			{Name: evLose, Src: []string{string(StatusActive)}, Dst: string(StatusDefeat)},
			{Name: evNext, Src: []string{string(StatusVictory)}, Dst: string(StatusCountdown)},
			{Name: evRestart, Src: []string{string(StatusDefeat)}, Dst: string(StatusCountdown)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				r.Log.Add(r.Tick, "--", "--", "room", "status", e.Src+" -> "+e.Dst, r.SceneTime)
				for _, fn := range r.statusListeners {
					fn(RoomStatus(e.Dst))
				}
			},
		},
	)
	if err := r.StartRoom(0); err != nil {
		return nil, err
	}
	return r, nil
}

// Status is the current room status.
func (r *Room) Status() RoomStatus { return RoomStatus(r.machine.Current()) }

// Index is the position of the current room in the catalog.
func (r *Room) Index() int { return r.index }

// ShipWeapon is the weapon rolled for this room's ship.
func (r *Room) ShipWeapon() string { return r.shipWeapon }

// ShipMods are the mods rolled for this room's ship.
func (r *Room) ShipMods() []string { return r.shipMods }

// BuffActive reports whether the named shop buff was bought this room.
func (r *Room) BuffActive(name string) bool { return r.roomBuffs[name] }

// StartRoom resets global mods and shop buffs, loads the room at index
// (wrapping) and rolls the ship loadout.
func (r *Room) StartRoom(index int) error {
	rooms := r.Catalog.Rooms
	r.index = index % len(rooms)
	def := rooms[r.index]

	r.PurgeGlobalMods()
	r.roomBuffs = map[string]bool{}
	if err := r.LoadRoom(def); err != nil {
		return err
	}

	countdown := def.CountdownMs
	if countdown <= 0 {
		countdown = defaultCountdownMs
	}
	r.setTimer(countdown)

	r.shipWeapon = r.RandomShipWeapon()
	r.shipMods = r.RandomShipMods(def.ShipModCount)
	for _, fn := range r.weaponListeners {
		fn(r.shipWeapon)
	}
	for _, fn := range r.modListeners {
		fn(r.shipMods)
	}
	r.Log.Add(r.Tick, "--", "enemy", "room", "loadout", fmt.Sprintf("%s %v", r.shipWeapon, r.shipMods), float64(len(r.shipMods)))
	return nil
}

// Update advances the room by delta ms.
func (r *Room) Update(delta float64) {
	r.Tick++
	r.SceneTime += delta
	switch r.Status() {
	case StatusCountdown:
		r.updateCountdown(delta)
	case StatusActive:
		r.updateActive(delta)
	case StatusVictory, StatusDefeat:
		r.updateTransition(delta)
	}
}

func (r *Room) updateCountdown(delta float64) {
	r.setTimer(r.TimerMs - delta)
	r.PurgeExpiredMods(r.SceneTime)
	r.syncAttachments(delta)
	if r.TimerMs > 0 {
		return
	}
	r.spawnShip()
	r.event(evSpawn)
	limit := r.Def.TimeLimitMs
	if limit <= 0 {
		limit = defaultTimeLimitMs
	}
	r.setTimer(limit)
}

// updateActive runs one frame in a fixed order: timers, destroyed-unit sweep,
// mod expiry, movement, weapons, the physics step that delivers every overlap
// callback, then the overlap sweep.
func (r *Room) updateActive(delta float64) {
	r.setTimer(r.TimerMs - delta)
	if r.TimerMs <= 0 {
		if ship := r.Ship(); ship != nil {
			r.Log.Add(r.Tick, ship.Label(), "enemy", "room", "timeout", "", 0)
			r.DestroyUnit(ship)
		}
	}
	r.updateProjectiles(delta)

	if won, decided := r.sweepDestroyed(); decided {
		r.finish(won)
		return
	}

	r.PurgeExpiredMods(r.SceneTime)
	r.trackReferencePositions()

	units := r.LiveUnits()
	for _, u := range units {
		pos, ok := r.TargetPosition(u)
		r.moveUnit(u, pos, ok, delta)
	}
	for _, u := range units {
		if u.Destroyed {
			continue
		}
		pos, ok := r.TargetPosition(u)
		r.UpdateUnitWeapon(u, pos, ok, delta)
	}

	r.World.Step(delta)
	r.overlaps.EndFrame()
	r.syncAttachments(delta)
}

// sweepDestroyed drops destroyed units from the live map. A lost target
// decides the room as a defeat even when the ship fell the same tick.
func (r *Room) sweepDestroyed() (won, decided bool) {
	shipGone, targetGone := false, false
	for _, u := range r.sortedUnits() {
		if !u.Destroyed {
			continue
		}
		delete(r.Units, u.ID)
		r.Log.AddVerbose(r.Tick, u.Label(), sideLabel(u.PlayerOwned), "room", "sweep", "", 0)
		switch u {
		case r.ship:
			shipGone = true
		case r.target:
			targetGone = true
		}
	}
	switch {
	case targetGone:
		return false, true
	case shipGone:
		return true, true
	}
	return false, false
}

// finish decides the room: damage colliders are removed, then resources are
// awarded (victory) or reset (defeat).
func (r *Room) finish(won bool) {
	r.DisconnectDamage()
	r.transitionMs = transitionDelayMs
	if !won {
		r.event(evLose)
		r.Economy.Set(startingResources)
		return
	}
	r.event(evWin)
	award := r.VictoryAward()
	r.Economy.Add(award)
	r.Log.Add(r.Tick, "--", "player", "economy", "award", r.Def.Name, float64(award))
}

// VictoryAward is the room reward plus half the price, rounded down, of every
// surviving player unit.
func (r *Room) VictoryAward() int {
	award := r.Def.Reward
	for _, u := range r.LiveUnits() {
		if u.PlayerOwned && u.Price > 0 {
			award += u.Price / 2
		}
	}
	return award
}

func (r *Room) updateTransition(delta float64) {
	r.transitionMs -= delta
	r.PurgeExpiredMods(r.SceneTime)
	r.syncAttachments(delta)
	if r.transitionMs > 0 {
		return
	}
	next := 0
	if r.Status() == StatusVictory {
		r.event(evNext)
		next = r.index + 1
	} else {
		r.event(evRestart)
	}
	if err := r.StartRoom(next); err != nil {
		r.Log.Add(r.Tick, "--", "--", "room", "load_error", err.Error(), 0)
	}
}

// spawnShip creates the ship with a spawn shield and its rolled loadout.
func (r *Room) spawnShip() {
	ship := r.InstantiateUnit(shipUnit, r.Def.ShipSpawn, WallNone)
	if ship == nil {
		return
	}
	if r.shipWeapon != "" {
		ship.Weapon = r.shipWeapon
		ship.WeaponDelay = r.Catalog.weapon(r.shipWeapon).Delay
	}
	r.CreateUnitMod(ship, ModSpec{
		Duration:     spawnShieldMs,
		AttachSprite: "spawnShield",
		Props:        ShieldProps{ShieldStrength: spawnShieldPower},
	})
	for _, name := range r.shipMods {
		sm, ok := r.Catalog.ShipMods[name]
		if !ok {
			continue
		}
		if sm.Global {
			r.CreateGlobalMod(false, sm.Mod)
		} else {
			r.CreateUnitMod(ship, sm.Mod)
		}
	}
	r.trackReferencePositions()
}

func (r *Room) event(name string) {
	if err := r.machine.Event(context.Background(), name); err != nil {
		r.Log.Add(r.Tick, "--", "--", "room", "bad_event", fmt.Sprintf("%s: %v", name, err), 0)
	}
}

// setTimer stores the countdown/time-limit timer and notifies listeners when
// the shown value (floored at 0) changes.
func (r *Room) setTimer(ms float64) {
	r.TimerMs = ms
	shown := ms
	if shown < 0 {
		shown = 0
	}
	if shown == r.lastTimerShown {
		return
	}
	r.lastTimerShown = shown
	for _, fn := range r.timerListeners {
		fn(shown)
	}
}

// PlaceUnit buys the named unit and places it on the tile under pos. A
// rejected placement changes nothing and returns the reason.
func (r *Room) PlaceUnit(name string, pos Vec2) (*Unit, error) {
	if st := r.Status(); st != StatusCountdown && st != StatusActive {
		return nil, fmt.Errorf("cannot place %s: %w", name, ErrRoomClosed)
	}
	tmpl, ok := r.Catalog.Units[name]
	if !ok {
		return nil, fmt.Errorf("cannot place %s: %w", name, ErrUnknownUnit)
	}
	if !tmpl.Purchasable {
		return nil, fmt.Errorf("cannot place %s: %w", name, ErrNotPurchasable)
	}
	if tmpl.Price > r.Economy.Resources() {
		return nil, fmt.Errorf("cannot place %s (%d): %w", name, tmpl.Price, ErrInsufficientResources)
	}
	tile := r.Tiles.AtWorld(pos)
	if tile == nil || tile.Collides() {
		return nil, fmt.Errorf("cannot place %s: %w", name, ErrTileBlocked)
	}
	wall := WallNone
	if tmpl.Movement == MoveCrawler {
		if wall = r.Tiles.WallSideAt(tile.Col, tile.Row); wall == WallNone {
			return nil, fmt.Errorf("cannot place %s: %w", name, ErrNotOnWall)
		}
	}
	u := r.InstantiateUnit(name, tile.Center(), wall)
	if u == nil {
		return nil, fmt.Errorf("cannot place %s: %w", name, ErrUnknownUnit)
	}
	r.Economy.Spend(tmpl.Price)
	r.Log.Add(r.Tick, u.Label(), "player", "economy", "purchase", name, float64(tmpl.Price))
	return u, nil
}

// PlaceSelected places the shop selection at pos.
func (r *Room) PlaceSelected(pos Vec2) (*Unit, error) {
	sel := r.Economy.Selection()
	if sel == "" {
		return nil, ErrNoSelection
	}
	return r.PlaceUnit(sel, pos)
}

// PurchaseBuff buys a shop buff, which becomes a player-global mod until the
// room ends. Each buff can be bought once per room.
func (r *Room) PurchaseBuff(name string) error {
	if st := r.Status(); st != StatusCountdown && st != StatusActive {
		return fmt.Errorf("cannot buy %s: %w", name, ErrRoomClosed)
	}
	buff, ok := r.Catalog.Buffs[name]
	if !ok {
		return fmt.Errorf("cannot buy %s: %w", name, ErrUnknownBuff)
	}
	if r.roomBuffs[name] {
		return fmt.Errorf("cannot buy %s: %w", name, ErrBuffActive)
	}
	if !r.Economy.Spend(buff.Price) {
		return fmt.Errorf("cannot buy %s (%d): %w", name, buff.Price, ErrInsufficientResources)
	}
	r.roomBuffs[name] = true
	r.CreateGlobalMod(true, buff.Mod)
	r.Log.Add(r.Tick, "--", "player", "economy", "buff", name, float64(buff.Price))
	return nil
}

// OnStatus registers a room status listener.
func (r *Room) OnStatus(fn func(RoomStatus)) { r.statusListeners = append(r.statusListeners, fn) }

// OnTimer registers a timer listener.
func (r *Room) OnTimer(fn func(float64)) { r.timerListeners = append(r.timerListeners, fn) }

// OnShipWeapon registers a listener for the rolled ship weapon.
func (r *Room) OnShipWeapon(fn func(string)) { r.weaponListeners = append(r.weaponListeners, fn) }

// OnShipMods registers a listener for the rolled ship mods.
func (r *Room) OnShipMods(fn func([]string)) { r.modListeners = append(r.modListeners, fn) }
