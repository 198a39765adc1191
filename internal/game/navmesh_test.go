package game

import (
	"math"
	"testing"
)

// openRoom is a walled 20×15 room of 32 px tiles.
func openRoom(t *testing.T, interior ...string) *TileMap {
	t.Helper()
	rows := []string{"####################"}
	for i := 0; i < 13; i++ {
		row := "#..................#"
		if i < len(interior) && interior[i] != "" {
			row = interior[i]
		}
		rows = append(rows, row)
	}
	rows = append(rows, "####################")
	tm, err := ParseTileMap(rows, 32)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tm
}

func TestNavGrid_FloorUnblocked(t *testing.T) {
	ng := NewNavGrid(openRoom(t))
	if ng.IsBlocked(1, 1) {
		t.Fatal("floor cell should not be blocked")
	}
	if ng.IsBlocked(18, 13) {
		t.Fatal("far floor corner should not be blocked")
	}
}

func TestNavGrid_WallsBlockCells(t *testing.T) {
	ng := NewNavGrid(openRoom(t))
	if !ng.IsBlocked(0, 0) {
		t.Fatal("wall cell should be blocked")
	}
	if !ng.IsBlocked(19, 7) {
		t.Fatal("east wall should be blocked")
	}
}

func TestNavGrid_OOB_IsBlocked(t *testing.T) {
	ng := NewNavGrid(openRoom(t))
	if !ng.IsBlocked(-1, 0) {
		t.Fatal("out-of-bounds cell should be blocked")
	}
	if !ng.IsBlocked(0, -1) {
		t.Fatal("out-of-bounds cell should be blocked")
	}
	if !ng.IsBlocked(ng.cols, 0) {
		t.Fatal("out-of-bounds cell should be blocked")
	}
}

func TestWorldToCell(t *testing.T) {
	ng := NewNavGrid(openRoom(t))
	cx, cy := ng.WorldToCell(Vec2{40, 70})
	// 32 px cells: 40/32=1, 70/32=2
	if cx != 1 || cy != 2 {
		t.Fatalf("expected (1,2) got (%d,%d)", cx, cy)
	}
}

func TestCellToWorld(t *testing.T) {
	ng := NewNavGrid(openRoom(t))
	p := ng.CellToWorld(2, 3)
	// center of cell (2,3): 2*32+16=80, 3*32+16=112
	if p.X != 80 || p.Y != 112 {
		t.Fatalf("expected (80,112) got (%.0f,%.0f)", p.X, p.Y)
	}
}

func TestNavGrid_FindPath_Straight(t *testing.T) {
	ng := NewNavGrid(openRoom(t))
	goal := Vec2{590, 48}
	path := ng.FindPath(Vec2{48, 48}, goal)
	if path == nil {
		t.Fatal("expected a path on open floor")
	}
	if len(path) < 2 {
		t.Fatal("expected at least 2 waypoints")
	}
	if last := path[len(path)-1]; last != goal {
		t.Fatalf("last waypoint %v should be exactly the goal %v", last, goal)
	}
}

func TestNavGrid_FindPath_AroundWall(t *testing.T) {
	// Vertical wall at column 9 with a gap at the bottom row.
	wall := "#........#.........#"
	tm := openRoom(t, wall, wall, wall, wall, wall, wall, wall, wall, wall, wall, wall, wall)
	ng := NewNavGrid(tm)
	path := ng.FindPath(Vec2{48, 48}, Vec2{560, 48})
	if path == nil {
		t.Fatal("expected a path routing around the wall")
	}
	for _, wp := range path {
		cx, cy := ng.WorldToCell(wp)
		if ng.IsBlocked(cx, cy) {
			t.Fatalf("waypoint %v lies in a blocked cell", wp)
		}
	}
	// The detour has to dip to the gap at row 13.
	dipped := false
	for _, wp := range path {
		if wp.Y >= 13*32 {
			dipped = true
		}
	}
	if !dipped {
		t.Fatal("path should pass through the gap at the bottom row")
	}
}

func TestNavGrid_FindPath_NoPath(t *testing.T) {
	ng := NewNavGrid(openRoom(t))
	if path := ng.FindPath(Vec2{8, 8}, Vec2{100, 100}); path != nil {
		t.Fatal("expected nil path when start is in a wall")
	}
	sealed := openRoom(t, "", "", "", "", "", "", "####################")
	ng = NewNavGrid(sealed)
	if path := ng.FindPath(Vec2{48, 48}, Vec2{48, 400}); path != nil {
		t.Fatal("expected nil path across a sealed wall")
	}
}

func TestNavGrid_FindPath_StartEqualsGoal(t *testing.T) {
	ng := NewNavGrid(openRoom(t))
	path := ng.FindPath(Vec2{100, 100}, Vec2{110, 104})
	if len(path) != 1 || path[0] != (Vec2{110, 104}) {
		t.Fatalf("same-cell path should be just the goal, got %v", path)
	}
}

func TestNavGrid_FindPath_Deterministic(t *testing.T) {
	ng := NewNavGrid(openRoom(t))
	p1 := ng.FindPath(Vec2{48, 48}, Vec2{590, 420})
	p2 := ng.FindPath(Vec2{48, 48}, Vec2{590, 420})
	if len(p1) != len(p2) {
		t.Fatalf("path lengths differ between identical calls: %d vs %d", len(p1), len(p2))
	}
	for i := range p1 {
		if math.Abs(p1[i].X-p2[i].X) > 0 || math.Abs(p1[i].Y-p2[i].Y) > 0 {
			t.Fatalf("waypoint %d differs: %v vs %v", i, p1[i], p2[i])
		}
	}
}
