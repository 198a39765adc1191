package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Garsondee/Room-Defense/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	outcome     string // victory, defeat or undecided
	decidedTick int

	firstShotTick   int
	firstHitTick    int
	firstDamageTick int

	shots        int
	hits         int
	contacts     int
	dodges       int
	playerLosses int
	enemyLosses  int
	award        int
	resources    int

	shipHealth   float64
	targetHealth float64
	shipWeapon   string
	shipMods     []string
	damagedBy    map[string]struct{}
}

// unitSpec is one -units entry: name@x,y.
type unitSpec struct {
	name string
	x, y float64
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var roomIndex int
	var units string
	var weapon string
	var mods string
	var buffs string
	var dump string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless room runs")
	flag.IntVar(&ticks, "ticks", 4200, "maximum ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&roomIndex, "room", 0, "catalog room index")
	flag.StringVar(&units, "units", "turret@304,400;chaser@240,464", "player units as name@x,y separated by ';'")
	flag.StringVar(&weapon, "weapon", "", "force the ship weapon (default: rolled per run)")
	flag.StringVar(&mods, "mods", "", "force the ship mods, comma separated")
	flag.StringVar(&buffs, "buffs", "", "shop buffs to activate, comma separated")
	flag.StringVar(&dump, "dump", "", "write the final snapshot of the last run (msgpack) to this path")
	flag.BoolVar(&verbose, "verbose", false, "record verbose log entries and print each run's full log")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	specs, err := parseUnitSpecs(units)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Room Report ===\n")
	fmt.Printf("room=%d runs=%d ticks=%d seed_base=%d seed_step=%d units=%q\n\n", roomIndex, runs, ticks, seedBase, seedStep, units)

	all := make([]runStats, 0, runs)
	var last *game.TestRoom
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		opts := []game.RoomOption{
			game.WithSeed(seed),
			game.WithVerbose(verbose),
			game.WithRoomIndex(roomIndex),
		}
		if weapon != "" || mods != "" {
			opts = append(opts, game.WithShipLoadout(weapon, splitList(mods)...))
		}
		for _, s := range specs {
			opts = append(opts, game.WithUnit(s.name, s.x, s.y))
		}
		for _, b := range splitList(buffs) {
			opts = append(opts, game.WithBuff(b))
		}
		tr := game.NewTestRoom(opts...)
		stats := runRoom(tr, i+1, seed, ticks)
		all = append(all, stats)
		printRun(stats)
		if verbose {
			fmt.Print(runLog(tr, i+1))
		}
		last = tr
	}

	printAggregate(all)

	if dump != "" && last != nil {
		data, err := last.Snapshot().Encode()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		if err := os.WriteFile(dump, data, 0o644); err != nil {
			fmt.Printf("error: failed to write snapshot: %v\n", err)
			return
		}
		fmt.Printf("\nsnapshot written to %s (%d bytes)\n", dump, len(data))
	}
}

// runRoom plays the room until it is decided or ticks run out.
func runRoom(tr *game.TestRoom, runIndex int, seed int64, ticks int) runStats {
	tr.RunUntil(func(tr *game.TestRoom) bool {
		st := tr.Status()
		return st == game.StatusVictory || st == game.StatusDefeat
	}, ticks)

	entries := tr.SimLog.Entries()
	outcome, decidedTick := outcomeOf(entries)
	rep := tr.Report()
	return runStats{
		runIndex:        runIndex,
		seed:            seed,
		outcome:         outcome,
		decidedTick:     decidedTick,
		firstShotTick:   firstTick(entries, "weapon", "fire", ""),
		firstHitTick:    firstTick(entries, "hit", "projectile", ""),
		firstDamageTick: firstTick(entries, "hit", "damage", ""),
		shots:           rep.Shots,
		hits:            rep.Hits,
		contacts:        rep.Contacts,
		dodges:          rep.Dodges,
		playerLosses:    rep.PlayerLosses,
		enemyLosses:     rep.EnemyLosses,
		award:           rep.Award,
		resources:       rep.Resources,
		shipHealth:      rep.ShipHealth,
		targetHealth:    rep.TargetHealth,
		shipWeapon:      rep.ShipWeapon,
		shipMods:        rep.ShipMods,
		damagedBy:       damagedUnits(entries),
	}
}

// runLog is the full event log of one run under a header line.
func runLog(tr *game.TestRoom, runIndex int) string {
	return fmt.Sprintf("== log run %d (%d entries) ==\n%s\n", runIndex, tr.SimLog.Len(), tr.SimLog.Format())
}

// parseUnitSpecs reads "name@x,y;name@x,y". Empty input yields no units.
func parseUnitSpecs(s string) ([]unitSpec, error) {
	var out []unitSpec
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, coords, ok := strings.Cut(part, "@")
		if !ok || name == "" {
			return nil, fmt.Errorf("bad unit %q: want name@x,y", part)
		}
		xs, ys, ok := strings.Cut(coords, ",")
		if !ok {
			return nil, fmt.Errorf("bad unit %q: want name@x,y", part)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("bad x in %q: %w", part, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("bad y in %q: %w", part, err)
		}
		out = append(out, unitSpec{name: strings.TrimSpace(name), x: x, y: y})
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// outcomeOf finds the first room decision in the log.
func outcomeOf(entries []game.SimLogEntry) (string, int) {
	for _, e := range entries {
		if e.Category != "room" || e.Key != "status" {
			continue
		}
		switch {
		case strings.HasSuffix(e.Value, "-> "+string(game.StatusVictory)):
			return string(game.StatusVictory), e.Tick
		case strings.HasSuffix(e.Value, "-> "+string(game.StatusDefeat)):
			return string(game.StatusDefeat), e.Tick
		}
	}
	return "undecided", -1
}

// damagedUnits lists the unit labels that took damage.
func damagedUnits(entries []game.SimLogEntry) map[string]struct{} {
	out := map[string]struct{}{}
	for _, e := range entries {
		if e.Category == "hit" && e.Key == "damage" {
			out[e.Unit] = struct{}{}
		}
	}
	return out
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("loadout: weapon=%s mods=[%s]\n", rs.shipWeapon, strings.Join(rs.shipMods, ","))
	fmt.Printf("outcome=%s decided_tick=%d award=%d resources=%d\n", rs.outcome, rs.decidedTick, rs.award, rs.resources)
	fmt.Printf("phase_markers: first_shot=%d first_hit=%d first_damage=%d\n",
		rs.firstShotTick, rs.firstHitTick, rs.firstDamageTick)
	fmt.Printf("event_totals: shots=%d hits=%d contacts=%d dodges=%d\n", rs.shots, rs.hits, rs.contacts, rs.dodges)
	fmt.Printf("losses: player=%d enemy=%d ship_hp=%.0f target_hp=%.0f\n",
		rs.playerLosses, rs.enemyLosses, rs.shipHealth, rs.targetHealth)
	fmt.Printf("damaged: %s\n\n", joinSet(rs.damagedBy))
}

func printAggregate(all []runStats) {
	wins, losses, undecided := outcomeCounts(all)
	var shots, hits, contacts, dodges int
	var decided []int
	weapons := map[string]int{}
	for _, rs := range all {
		shots += rs.shots
		hits += rs.hits
		contacts += rs.contacts
		dodges += rs.dodges
		if rs.decidedTick >= 0 {
			decided = append(decided, rs.decidedTick)
		}
		weapons[rs.shipWeapon]++
	}
	fmt.Printf("=== Aggregate ===\n")
	fmt.Printf("runs=%d victory=%d defeat=%d undecided=%d win_rate=%.0f%%\n",
		len(all), wins, losses, undecided, 100*avg(wins, len(all)))
	fmt.Printf("avg_events_per_run: shots=%.1f hits=%.1f contacts=%.1f dodges=%.1f\n",
		avg(shots, len(all)), avg(hits, len(all)), avg(contacts, len(all)), avg(dodges, len(all)))
	fmt.Printf("hit_rate=%.2f avg_decided_tick=%s most_rolled_weapon=%s\n",
		avg(hits, shots), avgTickString(decided), topTrait(weapons))
}

func outcomeCounts(all []runStats) (wins, losses, undecided int) {
	for _, rs := range all {
		switch rs.outcome {
		case string(game.StatusVictory):
			wins++
		case string(game.StatusDefeat):
			losses++
		default:
			undecided++
		}
	}
	return wins, losses, undecided
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func topTrait(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := ""
	bestN := 0
	for _, k := range keys {
		if v := counts[k]; v > bestN {
			best = k
			bestN = v
		}
	}
	return fmt.Sprintf("%s(%d)", best, bestN)
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
