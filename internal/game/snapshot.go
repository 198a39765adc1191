package game

import (
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// UnitSnapshot is the externally visible state of one unit.
type UnitSnapshot struct {
	ID          int      `msgpack:"id"`
	Name        string   `msgpack:"name"`
	PlayerOwned bool     `msgpack:"player"`
	Pos         Vec2     `msgpack:"pos"`
	Vel         Vec2     `msgpack:"vel"`
	Rotation    float64  `msgpack:"rot"`
	Health      float64  `msgpack:"hp"`
	MaxHealth   float64  `msgpack:"maxHp"`
	Weapon      string   `msgpack:"weapon,omitempty"`
	Mods        []string `msgpack:"mods,omitempty"`
}

// ProjectileSnapshot is the externally visible state of one projectile.
type ProjectileSnapshot struct {
	ID          int     `msgpack:"id"`
	PlayerOwned bool    `msgpack:"player"`
	AOE         bool    `msgpack:"aoe"`
	Source      string  `msgpack:"src"`
	Pos         Vec2    `msgpack:"pos"`
	Radius      float64 `msgpack:"r"`
}

// Snapshot captures a room at the end of a tick for callers outside the
// simulation: the headless dump and tests.
type Snapshot struct {
	Session     string               `msgpack:"session"`
	Tick        int                  `msgpack:"tick"`
	SceneTime   float64              `msgpack:"sceneTime"`
	Room        string               `msgpack:"room"`
	Status      RoomStatus           `msgpack:"status"`
	TimerMs     float64              `msgpack:"timerMs"`
	Resources   int                  `msgpack:"resources"`
	ShipWeapon  string               `msgpack:"shipWeapon,omitempty"`
	ShipMods    []string             `msgpack:"shipMods,omitempty"`
	PlayerMods  []ModType            `msgpack:"playerMods,omitempty"`
	EnemyMods   []ModType            `msgpack:"enemyMods,omitempty"`
	Units       []UnitSnapshot       `msgpack:"units"`
	Projectiles []ProjectileSnapshot `msgpack:"projectiles,omitempty"`
}

// Snapshot captures the room's current state.
func (r *Room) Snapshot() Snapshot {
	snap := Snapshot{
		Session:    r.ID.String(),
		Tick:       r.Tick,
		SceneTime:  r.SceneTime,
		Room:       r.Def.Name,
		Status:     r.Status(),
		TimerMs:    r.TimerMs,
		Resources:  r.Economy.Resources(),
		ShipWeapon: r.shipWeapon,
		ShipMods:   append([]string(nil), r.shipMods...),
		PlayerMods: modTypes(r.AllGlobalModsFor(true)),
		EnemyMods:  modTypes(r.AllGlobalModsFor(false)),
	}
	for _, u := range r.LiveUnits() {
		us := UnitSnapshot{
			ID:          u.ID,
			Name:        u.Name,
			PlayerOwned: u.PlayerOwned,
			Pos:         u.Center(),
			Vel:         u.Body.Velocity,
			Rotation:    u.Body.Rotation,
			Health:      u.Health,
			MaxHealth:   u.MaxHealth,
			Weapon:      u.Weapon,
		}
		for _, t := range AllModTypes {
			if len(u.Mods[t]) > 0 {
				us.Mods = append(us.Mods, string(t))
			}
		}
		snap.Units = append(snap.Units, us)
	}
	for _, p := range r.Projectiles() {
		hx, _ := p.Body.extents()
		snap.Projectiles = append(snap.Projectiles, ProjectileSnapshot{
			ID:          p.ID,
			PlayerOwned: p.PlayerOwned,
			AOE:         p.Kind == KindAOE,
			Source:      p.Source,
			Pos:         p.Body.Center,
			Radius:      hx,
		})
	}
	return snap
}

// modTypes lists the distinct types among mods in ModType order.
func modTypes(mods []*Mod) []ModType {
	seen := map[ModType]bool{}
	for _, m := range mods {
		seen[m.Type] = true
	}
	var out []ModType
	for _, t := range AllModTypes {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// Encode serializes the snapshot with msgpack.
func (s Snapshot) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot is the inverse of Snapshot.Encode.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}

// UnitByName returns the first unit snapshot with the given template name.
func (s Snapshot) UnitByName(name string) (UnitSnapshot, bool) {
	for _, u := range s.Units {
		if u.Name == name {
			return u, true
		}
	}
	return UnitSnapshot{}, false
}

// CountBySide counts units per side.
func (s Snapshot) CountBySide() (player, enemy int) {
	for _, u := range s.Units {
		if u.PlayerOwned {
			player++
		} else {
			enemy++
		}
	}
	return player, enemy
}

// SortedNames returns the distinct unit names in the snapshot.
func (s Snapshot) SortedNames() []string {
	seen := map[string]bool{}
	for _, u := range s.Units {
		seen[u.Name] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
