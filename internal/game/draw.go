package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var (
	colBackground = color.RGBA{R: 12, G: 14, B: 18, A: 255}
	colFloor      = color.RGBA{R: 34, G: 38, B: 46, A: 255}
	colWall       = color.RGBA{R: 86, G: 92, B: 110, A: 255}
	colGrid       = color.RGBA{R: 46, G: 50, B: 60, A: 255}
	colPlayer     = color.RGBA{R: 70, G: 170, B: 255, A: 255}
	colEnemy      = color.RGBA{R: 230, G: 80, B: 70, A: 255}
	colShip       = color.RGBA{R: 255, G: 130, B: 40, A: 255}
	colTarget     = color.RGBA{R: 90, G: 230, B: 120, A: 255}
	colBarBg      = color.RGBA{R: 20, G: 20, B: 20, A: 220}
	colBar        = color.RGBA{R: 80, G: 220, B: 90, A: 255}
	colBarFlash   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colShield     = color.RGBA{R: 120, G: 200, B: 255, A: 160}
	colSpawn      = color.RGBA{R: 255, G: 240, B: 150, A: 160}
	colLaser      = color.RGBA{R: 255, G: 60, B: 200, A: 200}
	colAOE        = color.RGBA{R: 255, G: 200, B: 60, A: 90}
	colHUDText    = color.RGBA{R: 210, G: 220, B: 230, A: 255}
	colHUDDim     = color.RGBA{R: 120, G: 130, B: 140, A: 255}
	colHUDWarn    = color.RGBA{R: 255, G: 180, B: 90, A: 255}
	colPlaceOK    = color.RGBA{R: 90, G: 230, B: 120, A: 70}
	colPlaceBad   = color.RGBA{R: 230, G: 80, B: 70, A: 70}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)

	g.drawTiles(screen)
	g.drawPlacementPreview(screen)
	g.drawProjectiles(screen)
	g.drawUnits(screen)

	ox, oy := float32(g.offX), float32(g.offY)
	tm := g.room.Tiles
	vector.StrokeRect(screen, ox-1, oy-1, float32(tm.WorldWidth())+2, float32(tm.WorldHeight())+2,
		2.0, color.RGBA{R: 70, G: 80, B: 100, A: 255}, false)

	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.simSpeed != 1 {
		ebitenutil.DebugPrintAt(screen, g.speedLabel(), g.offX+4, 4)
	}
}

func (g *Game) drawTiles(screen *ebiten.Image) {
	tm := g.room.Tiles
	ox, oy := float32(g.offX), float32(g.offY)
	size := float32(tm.Size)
	vector.FillRect(screen, ox, oy, float32(tm.WorldWidth()), float32(tm.WorldHeight()), colFloor, false)
	for row := 0; row < tm.Rows; row++ {
		for col := 0; col < tm.Cols; col++ {
			if !tm.Collides(col, row) {
				continue
			}
			vector.FillRect(screen, ox+float32(col)*size, oy+float32(row)*size, size, size, colWall, false)
		}
	}
	drawGridOffset(screen, g.offX, g.offY, int(tm.WorldWidth()), int(tm.WorldHeight()), tm.Size, colGrid)
}

// drawPlacementPreview tints the tile under the cursor while a shop unit is selected.
func (g *Game) drawPlacementPreview(screen *ebiten.Image) {
	sel := g.room.Economy.Selection()
	if sel == "" {
		return
	}
	pos, ok := g.worldPos(ebiten.CursorPosition())
	if !ok {
		return
	}
	tile := g.room.Tiles.AtWorld(pos)
	if tile == nil {
		return
	}
	c := colPlaceOK
	tmpl, _ := g.room.Catalog.UnitTemplate(sel)
	switch {
	case tile.Collides(), tmpl.Price > g.room.Economy.Resources():
		c = colPlaceBad
	case tmpl.Movement == MoveCrawler && g.room.Tiles.WallSideAt(tile.Col, tile.Row) == WallNone:
		c = colPlaceBad
	}
	vector.FillRect(screen, float32(g.offX)+float32(tile.PixelX()), float32(g.offY)+float32(tile.PixelY()),
		float32(tile.Width()), float32(tile.Width()), c, false)
}

func (g *Game) drawUnits(screen *ebiten.Image) {
	ox, oy := float32(g.offX), float32(g.offY)
	for _, u := range g.room.LiveUnits() {
		c := colEnemy
		switch {
		case u.Name == shipUnit:
			c = colShip
		case u.Name == targetUnit:
			c = colTarget
		case u.PlayerOwned:
			c = colPlayer
		}
		b := u.Body
		cx, cy := ox+float32(b.Center.X), oy+float32(b.Center.Y)
		if b.Shape == ShapeCircle {
			vector.FillCircle(screen, cx, cy, float32(b.Radius), c, true)
		} else {
			vector.FillRect(screen, cx-float32(b.HalfW), cy-float32(b.HalfH), float32(2*b.HalfW), float32(2*b.HalfH), c, false)
		}
		if u.Rotation || u.isCrawler() {
			hx, _ := b.extents()
			tip := b.Center.Add(FromAngle(b.Rotation).Scale(hx + 6))
			vector.StrokeLine(screen, cx, cy, ox+float32(tip.X), oy+float32(tip.Y), 2, colBackground, true)
		}
		if u.Laser != nil {
			g.drawLaser(screen, u)
		}
		g.drawAttachments(screen, u)
	}
}

func (g *Game) drawLaser(screen *ebiten.Image, u *Unit) {
	ox, oy := float32(g.offX), float32(g.offY)
	for _, seg := range u.Laser.Segments {
		if seg.Destroyed() {
			continue
		}
		p := seg.Body.Center
		vector.FillCircle(screen, ox+float32(p.X), oy+float32(p.Y), float32(seg.Body.Radius)/2, colLaser, true)
	}
	start := u.Center()
	end := start.Add(FromAngle(u.Laser.Angle).Scale(laserSegmentCount * laserSegmentSpacing))
	vector.StrokeLine(screen, ox+float32(start.X), oy+float32(start.Y), ox+float32(end.X), oy+float32(end.Y), 2, colLaser, true)
}

func (g *Game) drawAttachments(screen *ebiten.Image, u *Unit) {
	ox, oy := float32(g.offX), float32(g.offY)
	hx, _ := u.Body.extents()
	for _, list := range u.Attached {
		for _, a := range list {
			if a.Destroyed() {
				continue
			}
			x, y := ox+float32(a.Pos.X), oy+float32(a.Pos.Y)
			switch a.Sprite {
			case "healthBarBg":
				vector.FillRect(screen, x-float32(a.Width)/2, y-float32(a.Height)/2, float32(a.Width), float32(a.Height), colBarBg, false)
			case "healthBar":
				c := colBar
				if a.FlashMs > 0 {
					c = colBarFlash
				}
				left := x - healthBarWidth/2
				vector.FillRect(screen, left, y-float32(a.Height)/2, float32(a.Width), float32(a.Height), c, false)
			case "spawnShield":
				vector.StrokeCircle(screen, x, y, float32(hx)+8, 3, colSpawn, true)
			case "laser":
			default:
				vector.StrokeCircle(screen, x, y, float32(hx)+5, 2, colShield, true)
			}
		}
	}
}

func (g *Game) drawProjectiles(screen *ebiten.Image) {
	ox, oy := float32(g.offX), float32(g.offY)
	for _, p := range g.room.Projectiles() {
		if p.Source == WeaponLaser {
			continue
		}
		c := colPlayer
		if !p.PlayerOwned {
			c = colEnemy
		}
		cx, cy := ox+float32(p.Body.Center.X), oy+float32(p.Body.Center.Y)
		hx, _ := p.Body.extents()
		if p.Kind == KindAOE {
			vector.FillCircle(screen, cx, cy, float32(hx), colAOE, true)
			vector.StrokeCircle(screen, cx, cy, float32(hx), 1, c, true)
			continue
		}
		vector.FillCircle(screen, cx, cy, float32(hx), c, true)
		if p.Ghost {
			vector.StrokeCircle(screen, cx, cy, float32(hx)+2, 1, colHUDDim, true)
		}
	}
}

// drawHUD renders the side panel with basicfont.
func (g *Game) drawHUD(screen *ebiten.Image) {
	r := g.room
	x := g.offX + int(r.Tiles.WorldWidth()) + borderWidth
	y := g.offY + 12
	const lineH = 16

	vector.FillRect(screen, float32(x-8), float32(g.offY-4), float32(hudWidth-8), float32(g.height-2*g.offY+8),
		color.RGBA{R: 18, G: 22, B: 28, A: 255}, false)

	line := func(s string, c color.Color) {
		text.Draw(screen, s, basicfont.Face7x13, x, y, c)
		y += lineH
	}

	line(fmt.Sprintf("%s  [%s]", r.Def.Name, r.Status()), colHUDText)
	line(fmt.Sprintf("timer %.1fs   %s", math.Max(r.TimerMs, 0)/1000, g.speedLabel()), colHUDText)
	line(fmt.Sprintf("resources %d", r.Economy.Resources()), colHUDText)
	y += lineH / 2

	line("ship", colHUDDim)
	line("  weapon "+r.ShipWeapon(), colHUDText)
	for _, m := range r.ShipMods() {
		line("  + "+m, colHUDText)
	}
	if ship := r.Ship(); ship != nil {
		line(fmt.Sprintf("  hp %.0f/%.0f", ship.Health, ship.MaxHealth), colHUDText)
	}
	if t := r.Target(); t != nil {
		line(fmt.Sprintf("target hp %.0f/%.0f", t.Health, t.MaxHealth), colHUDText)
	}
	y += lineH / 2

	line("shop", colHUDDim)
	sel := r.Economy.Selection()
	for i, tmpl := range g.shop {
		if i >= len(shopKeys) {
			break
		}
		mark := " "
		if tmpl.Name == sel {
			mark = ">"
		}
		c := colHUDText
		if tmpl.Price > r.Economy.Resources() {
			c = colHUDDim
		}
		line(fmt.Sprintf("%s[%d] %-12s %4d", mark, i+1, tmpl.Name, tmpl.Price), c)
	}
	y += lineH / 2

	line("buffs", colHUDDim)
	for i, name := range g.buffs {
		if i >= len(buffKeys) {
			break
		}
		mark := " "
		if r.BuffActive(name) {
			mark = "*"
		}
		price := r.Catalog.Buffs[name].Price
		line(fmt.Sprintf("%s[%s] %-16s %4d", mark, buffKeys[i].String(), name, price), colHUDText)
	}
	y += lineH / 2

	line("click=place  0=deselect", colHUDDim)
	line("P=pause ,/.=speed C=copy report", colHUDDim)
	if g.messageMs > 0 && g.message != "" {
		y += lineH / 2
		line(g.message, colHUDWarn)
	}
}

func (g *Game) speedLabel() string {
	switch g.simSpeed {
	case 0:
		return "PAUSED"
	case 1, 2, 4:
		return fmt.Sprintf("%.0fx", g.simSpeed)
	}
	return fmt.Sprintf("%.1fx", g.simSpeed)
}

func drawGridOffset(screen *ebiten.Image, offX, offY, w, h, spacing int, c color.Color) {
	if spacing <= 0 {
		return
	}
	ox, oy := float32(offX), float32(offY)
	for x := 0; x <= w; x += spacing {
		xf := ox + float32(x)
		vector.StrokeLine(screen, xf, oy, xf, oy+float32(h), 1.0, c, false)
	}
	for y := 0; y <= h; y += spacing {
		yf := oy + float32(y)
		vector.StrokeLine(screen, ox, yf, ox+float32(w), yf, 1.0, c, false)
	}
}
