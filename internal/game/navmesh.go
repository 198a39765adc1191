package game

import (
	"container/heap"
	"math"
)

// NavGrid is a walkability grid over the room tiles where true = blocked.
type NavGrid struct {
	cols     int
	rows     int
	cellSize int
	blocked  []bool
}

// NewNavGrid builds a walkability grid from the tile map. Every solid tile is blocked.
func NewNavGrid(tm *TileMap) *NavGrid {
	ng := &NavGrid{
		cols:     tm.Cols,
		rows:     tm.Rows,
		cellSize: tm.Size,
		blocked:  make([]bool, tm.Cols*tm.Rows),
	}
	for row := 0; row < tm.Rows; row++ {
		for col := 0; col < tm.Cols; col++ {
			ng.blocked[row*tm.Cols+col] = tm.Collides(col, row)
		}
	}
	return ng
}

// IsBlocked returns true if the cell at (cx, cy) is not walkable.
func (ng *NavGrid) IsBlocked(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= ng.cols || cy >= ng.rows {
		return true
	}
	return ng.blocked[cy*ng.cols+cx]
}

// WorldToCell converts world pixel coordinates to grid cell coordinates.
func (ng *NavGrid) WorldToCell(p Vec2) (int, int) {
	return int(math.Floor(p.X / float64(ng.cellSize))), int(math.Floor(p.Y / float64(ng.cellSize)))
}

// CellToWorld converts grid cell coordinates to the world pixel center.
func (ng *NavGrid) CellToWorld(cx, cy int) Vec2 {
	half := float64(ng.cellSize) / 2
	return Vec2{float64(cx*ng.cellSize) + half, float64(cy*ng.cellSize) + half}
}

// --- A* pathfinding ---

type pathNode struct {
	cx, cy int
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int            { return len(ol) }
func (ol openList) Less(i, j int) bool  { return (ol[i].g + ol[i].h) < (ol[j].g + ol[j].h) }
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPath returns world-coordinate waypoints from `from` to `to`. The start
// cell is omitted and the final waypoint is exactly `to`.
// Returns nil if no path exists or either end lies in a blocked cell.
func (ng *NavGrid) FindPath(from, to Vec2) []Vec2 {
	scx, scy := ng.WorldToCell(from)
	gcx, gcy := ng.WorldToCell(to)

	if ng.IsBlocked(scx, scy) || ng.IsBlocked(gcx, gcy) {
		return nil
	}
	if scx == gcx && scy == gcy {
		return []Vec2{to}
	}

	key := func(cx, cy int) int { return cy*ng.cols + cx }
	heuristic := func(ax, ay, bx, by int) float64 {
		dx := math.Abs(float64(ax - bx))
		dy := math.Abs(float64(ay - by))
		return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
	}

	start := &pathNode{cx: scx, cy: scy, g: 0, h: heuristic(scx, scy, gcx, gcy)}
	ol := &openList{start}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := make(map[int]*pathNode)
	best[key(scx, scy)] = start

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cx == gcx && cur.cy == gcy {
			return ng.buildPath(cur, to)
		}
		k := key(cur.cx, cur.cy)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range dirs {
			nx, ny := cur.cx+d[0], cur.cy+d[1]
			if ng.IsBlocked(nx, ny) {
				continue
			}
			// Prevent diagonal corner-cutting through blocked cells.
			if d[0] != 0 && d[1] != 0 {
				if ng.IsBlocked(cur.cx+d[0], cur.cy) || ng.IsBlocked(cur.cx, cur.cy+d[1]) {
					continue
				}
			}
			nk := key(nx, ny)
			if closed[nk] {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				cost = math.Sqrt2
			}
			g := cur.g + cost
			if prev, ok := best[nk]; ok && g >= prev.g {
				continue
			}
			node := &pathNode{cx: nx, cy: ny, g: g, h: heuristic(nx, ny, gcx, gcy), parent: cur}
			best[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

func (ng *NavGrid) buildPath(end *pathNode, to Vec2) []Vec2 {
	var cells [][2]int
	for n := end; n.parent != nil; n = n.parent {
		cells = append(cells, [2]int{n.cx, n.cy})
	}
	// Reverse
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	path := make([]Vec2, len(cells))
	for i, c := range cells {
		path[i] = ng.CellToWorld(c[0], c[1])
	}
	path[len(path)-1] = to
	return path
}
