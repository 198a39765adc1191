package main

import (
	"strings"
	"testing"

	"github.com/Garsondee/Room-Defense/internal/game"
)

func TestParseUnitSpecs(t *testing.T) {
	specs, err := parseUnitSpecs(" turret@304,400 ; chaser@240.5,464;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[0].name != "turret" || specs[0].x != 304 || specs[0].y != 400 {
		t.Fatalf("unexpected first spec: %+v", specs[0])
	}
	if specs[1].name != "chaser" || specs[1].x != 240.5 {
		t.Fatalf("unexpected second spec: %+v", specs[1])
	}
}

func TestParseUnitSpecs_Empty(t *testing.T) {
	specs, err := parseUnitSpecs("")
	if err != nil || len(specs) != 0 {
		t.Fatalf("expected no specs and no error, got %v, %v", specs, err)
	}
}

func TestParseUnitSpecs_RejectsMalformed(t *testing.T) {
	for _, in := range []string{"turret", "turret@304", "@1,2", "turret@x,2", "turret@1,y"} {
		if _, err := parseUnitSpecs(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestOutcomeOf_FirstDecisionWins(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 300, Category: "room", Key: "status", Value: "countdown -> active"},
		{Tick: 900, Category: "room", Key: "status", Value: "active -> defeat"},
		{Tick: 1200, Category: "room", Key: "status", Value: "active -> victory"},
	}
	outcome, tick := outcomeOf(entries)
	if outcome != "defeat" || tick != 900 {
		t.Fatalf("expected defeat at 900, got %s at %d", outcome, tick)
	}
}

func TestOutcomeOf_Undecided(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 300, Category: "room", Key: "status", Value: "countdown -> active"},
	}
	outcome, tick := outcomeOf(entries)
	if outcome != "undecided" || tick != -1 {
		t.Fatalf("expected undecided, got %s at %d", outcome, tick)
	}
}

func TestOutcomeCounts(t *testing.T) {
	all := []runStats{{outcome: "victory"}, {outcome: "victory"}, {outcome: "defeat"}, {outcome: "undecided"}}
	wins, losses, undecided := outcomeCounts(all)
	if wins != 2 || losses != 1 || undecided != 1 {
		t.Fatalf("expected 2/1/1, got %d/%d/%d", wins, losses, undecided)
	}
}

func TestDamagedUnits(t *testing.T) {
	entries := []game.SimLogEntry{
		{Unit: "ship#3", Category: "hit", Key: "damage"},
		{Unit: "ship#3", Category: "hit", Key: "damage"},
		{Unit: "turret#4", Category: "hit", Key: "absorbed"},
		{Unit: "target#1", Category: "hit", Key: "damage"},
	}
	got := joinSet(damagedUnits(entries))
	if got != "ship#3,target#1" {
		t.Fatalf("unexpected damaged set: %s", got)
	}
}

func TestTopTrait_TiesBreakAlphabetically(t *testing.T) {
	got := topTrait(map[string]int{"laser": 2, "peaShooter": 2, "zapper": 1})
	if !strings.HasPrefix(got, "laser(") {
		t.Fatalf("expected laser to win the tie, got %s", got)
	}
}

func TestRunRoom_DecidesWithinTimeLimit(t *testing.T) {
	tr := game.NewTestRoom(game.WithSeed(7), game.WithShipLoadout("peaShooter"))
	rs := runRoom(tr, 1, 7, 5000)
	if rs.outcome == "undecided" {
		t.Fatalf("expected the room to be decided within the time limit")
	}
	if rs.shots == 0 {
		t.Fatalf("expected the ship to fire at least once")
	}
}

func TestRunLog_PrintsEveryEntry(t *testing.T) {
	tr := game.NewTestRoom(game.WithSeed(3), game.WithShipLoadout("peaShooter"), game.WithActive())
	tr.RunTicks(30)

	out := runLog(tr, 2)
	if !strings.HasPrefix(out, "== log run 2 (") {
		t.Fatalf("unexpected header: %q", strings.SplitN(out, "\n", 2)[0])
	}
	lines := strings.Count(out, "\n[T=")
	if lines != tr.SimLog.Len() {
		t.Fatalf("expected %d log lines, got %d", tr.SimLog.Len(), lines)
	}
	if !strings.Contains(out, "loadout") {
		t.Fatalf("expected the loadout entry in the log")
	}
}
