package game

import (
	"fmt"
	"strings"
)

// RoomReport aggregates the event log of a room run.
type RoomReport struct {
	Room       string
	Status     RoomStatus
	Ticks      int
	SceneTime  float64
	ShipWeapon string
	ShipMods   []string

	Shots        int
	Hits         int
	Contacts     int
	Dodges       int
	PlayerLosses int
	EnemyLosses  int
	Award        int
	Resources    int

	ShipHealth   float64
	TargetHealth float64
}

// Report summarises the log recorded so far.
func (r *Room) Report() RoomReport {
	rep := RoomReport{
		Room:       r.Def.Name,
		Status:     r.Status(),
		Ticks:      r.Tick,
		SceneTime:  r.SceneTime,
		ShipWeapon: r.shipWeapon,
		ShipMods:   r.shipMods,
		Resources:  r.Economy.Resources(),
	}
	for _, e := range r.Log.Entries() {
		switch e.Category {
		case "weapon":
			if e.Key == "fire" {
				rep.Shots++
			}
		case "hit":
			switch e.Key {
			case "projectile":
				rep.Hits++
			case "contact":
				rep.Contacts++
			}
		case "move":
			if e.Key == "dodge" {
				rep.Dodges++
			}
		case "unit":
			if e.Key == "destroyed" {
				if e.Side == "player" {
					rep.PlayerLosses++
				} else {
					rep.EnemyLosses++
				}
			}
		case "economy":
			if e.Key == "award" {
				rep.Award += int(e.NumVal)
			}
		}
	}
	if sh := r.Ship(); sh != nil {
		rep.ShipHealth = sh.Health
	}
	if t := r.Target(); t != nil {
		rep.TargetHealth = t.Health
	}
	return rep
}

// String formats the report as a short block.
func (rep RoomReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "room=%s status=%s ticks=%d time=%.1fs\n", rep.Room, rep.Status, rep.Ticks, rep.SceneTime/1000)
	fmt.Fprintf(&b, "ship: weapon=%s mods=[%s] hp=%.0f\n", rep.ShipWeapon, strings.Join(rep.ShipMods, ","), rep.ShipHealth)
	fmt.Fprintf(&b, "target hp=%.0f resources=%d award=%d\n", rep.TargetHealth, rep.Resources, rep.Award)
	fmt.Fprintf(&b, "shots=%d hits=%d contacts=%d dodges=%d losses: player=%d enemy=%d\n",
		rep.Shots, rep.Hits, rep.Contacts, rep.Dodges, rep.PlayerLosses, rep.EnemyLosses)
	return b.String()
}

// DebugReport is the text the viewer copies to the clipboard: the session
// header, the room report, a unit summary, every entry of the current ship
// and the last lastTicks of the log.
func (r *Room) DebugReport(lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	fromTick := r.Tick - lastTicks + 1
	if fromTick < 0 {
		fromTick = 0
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- Room Defense debug report ---\n")
	fmt.Fprintf(&b, "session=%s tick_range=[%d..%d]\n\n", r.ID, fromTick, r.Tick)
	b.WriteString(r.Report().String())
	b.WriteByte('\n')
	b.WriteString(r.Log.Summary(r.Tick, r.LiveUnits()))
	if r.ship != nil {
		label := r.ship.Label()
		fmt.Fprintf(&b, "\n== %s ==\n", label)
		for _, e := range r.Log.FilterUnit(label) {
			b.WriteString(e.String())
			b.WriteByte('\n')
		}
	}
	b.WriteString("\n== log ==\n")
	b.WriteString(r.Log.FormatRange(fromTick, r.Tick))
	return b.String()
}
