package game

import "fmt"

// defaultTileSize is the edge length of one room tile in pixels.
const defaultTileSize = 32

// TileFlags is a bitfield for per-tile metadata.
type TileFlags uint8

const (
	TileSolid     TileFlags = 1 << iota // blocks units, bullets and LOS
	TileNoCrawler                       // solid, but crawlers cannot ride it
)

// Tile represents one cell of the room grid.
type Tile struct {
	Col, Row int
	Flags    TileFlags
	size     int
}

// Collides reports whether the tile is solid geometry.
func (t *Tile) Collides() bool { return t.Flags&TileSolid != 0 }

// PixelX is the world x of the tile's left edge.
func (t *Tile) PixelX() float64 { return float64(t.Col * t.size) }

// PixelY is the world y of the tile's top edge.
func (t *Tile) PixelY() float64 { return float64(t.Row * t.size) }

// Width is the tile edge length in pixels.
func (t *Tile) Width() float64 { return float64(t.size) }

// Center returns the world-space center of the tile.
func (t *Tile) Center() Vec2 {
	half := float64(t.size) / 2
	return Vec2{t.PixelX() + half, t.PixelY() + half}
}

// WallSide names the wall a crawler rides on.
type WallSide string

const (
	WallNone  WallSide = ""
	WallNorth WallSide = "N"
	WallEast  WallSide = "E"
	WallSouth WallSide = "S"
	WallWest  WallSide = "W"
)

// TileMap is the authoritative room geometry.
type TileMap struct {
	Cols  int
	Rows  int
	Size  int
	tiles []Tile
}

// NewTileMap creates an open tile map of cols×rows tiles of size pixels.
func NewTileMap(cols, rows, size int) *TileMap {
	if size <= 0 {
		size = defaultTileSize
	}
	tm := &TileMap{Cols: cols, Rows: rows, Size: size, tiles: make([]Tile, cols*rows)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			tm.tiles[row*cols+col] = Tile{Col: col, Row: row, size: size}
		}
	}
	return tm
}

// ParseTileMap builds a tile map from text rows: '#' is a wall, 'x' is a wall
// crawlers cannot attach to, anything else is open floor.
func ParseTileMap(rows []string, size int) (*TileMap, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("tile map has no rows")
	}
	cols := len(rows[0])
	tm := NewTileMap(cols, len(rows), size)
	for r, line := range rows {
		if len(line) != cols {
			return nil, fmt.Errorf("tile map row %d has %d columns, want %d", r, len(line), cols)
		}
		for c, ch := range line {
			switch ch {
			case '#':
				tm.SetFlags(c, r, TileSolid)
			case 'x':
				tm.SetFlags(c, r, TileSolid|TileNoCrawler)
			}
		}
	}
	return tm, nil
}

func (tm *TileMap) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < tm.Cols && row < tm.Rows
}

// At returns the tile at (col, row), or nil if out of bounds.
func (tm *TileMap) At(col, row int) *Tile {
	if !tm.inBounds(col, row) {
		return nil
	}
	return &tm.tiles[row*tm.Cols+col]
}

// AtWorld returns the tile under world position p, or nil outside the map.
func (tm *TileMap) AtWorld(p Vec2) *Tile {
	if p.X < 0 || p.Y < 0 {
		return nil
	}
	return tm.At(int(p.X)/tm.Size, int(p.Y)/tm.Size)
}

// SetFlags sets flag bits on a tile.
func (tm *TileMap) SetFlags(col, row int, f TileFlags) {
	if t := tm.At(col, row); t != nil {
		t.Flags |= f
	}
}

// Collides treats out-of-bounds cells as solid.
func (tm *TileMap) Collides(col, row int) bool {
	t := tm.At(col, row)
	return t == nil || t.Collides()
}

func (tm *TileMap) crawlable(col, row int) bool {
	t := tm.At(col, row)
	return t != nil && t.Collides() && t.Flags&TileNoCrawler == 0
}

// WallSideAt reports which wall an open tile is adjacent to, checked in the
// order W, E, N, S. Returns WallNone when the tile is solid or no neighbour is
// a crawlable wall.
func (tm *TileMap) WallSideAt(col, row int) WallSide {
	if tm.Collides(col, row) {
		return WallNone
	}
	switch {
	case tm.crawlable(col-1, row):
		return WallWest
	case tm.crawlable(col+1, row):
		return WallEast
	case tm.crawlable(col, row-1):
		return WallNorth
	case tm.crawlable(col, row+1):
		return WallSouth
	}
	return WallNone
}

// WorldWidth is the room width in pixels.
func (tm *TileMap) WorldWidth() float64 { return float64(tm.Cols * tm.Size) }

// WorldHeight is the room height in pixels.
func (tm *TileMap) WorldHeight() float64 { return float64(tm.Rows * tm.Size) }

// rect is an axis-aligned pixel rectangle.
type rect struct {
	x int
	y int
	w int
	h int
}

// SolidRects returns one rect per solid tile, used for LOS and geometry checks.
func (tm *TileMap) SolidRects() []rect {
	var out []rect
	for i := range tm.tiles {
		t := &tm.tiles[i]
		if t.Collides() {
			out = append(out, rect{x: t.Col * tm.Size, y: t.Row * tm.Size, w: tm.Size, h: tm.Size})
		}
	}
	return out
}
