package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// borderWidth is the pixel gap between the window edge and the room.
const borderWidth = 24

// hudWidth is the side panel to the right of the room.
const hudWidth = 280

const (
	minWindowHeight = 480
	messageMs       = 3000.0
	reportLastTicks = 600 // ten seconds of log in a copied report
)

// buffKeys are bound to the catalog buffs in BuffNames order.
var buffKeys = []ebiten.Key{
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR, ebiten.KeyT, ebiten.KeyY,
}

// shopKeys are bound to the purchasable units in PurchasableUnits order.
var shopKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// Game is the ebiten viewer around a Room.
type Game struct {
	room   *Room
	width  int
	height int
	offX   int
	offY   int

	shop  []UnitTemplate
	buffs []string

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64

	message   string
	messageMs float64
	showHUD   bool
}

// New builds a viewer over the embedded catalog, seeded from the clock.
func New() *Game {
	r, err := NewRoom(MustDefaultCatalog(), WithSessionSeed(time.Now().UnixNano()))
	if err != nil {
		panic(fmt.Sprintf("room defense: %v", err))
	}
	g := &Game{
		room:     r,
		offX:     borderWidth,
		offY:     borderWidth,
		shop:     r.Catalog.PurchasableUnits(),
		buffs:    r.Catalog.BuffNames(),
		simSpeed: 1,
		showHUD:  true,
	}
	g.resize()
	r.OnStatus(func(st RoomStatus) {
		switch st {
		case StatusVictory:
			g.say(fmt.Sprintf("room cleared: +%d", r.VictoryAward()))
		case StatusDefeat:
			g.say("target lost, resources reset")
		}
	})
	return g
}

// resize fits the window to the current room.
func (g *Game) resize() {
	tm := g.room.Tiles
	g.width = borderWidth + int(tm.WorldWidth()) + borderWidth + hudWidth
	g.height = borderWidth + int(tm.WorldHeight()) + borderWidth
	if g.height < minWindowHeight {
		g.height = minWindowHeight
	}
}

func (g *Game) say(msg string) {
	g.message = msg
	g.messageMs = messageMs
}

func (g *Game) Update() error {
	g.handleInput()

	if g.messageMs > 0 {
		g.messageMs -= TickMs
	}
	if g.simSpeed <= 0 {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.room.Update(TickMs)
	}
	g.resize()
	return nil
}

// handleInput processes shop, speed and report keys (edge-triggered).
func (g *Game) handleInput() {
	for i, k := range shopKeys {
		if i < len(g.shop) && inpututil.IsKeyJustPressed(k) {
			name := g.shop[i].Name
			if g.room.Economy.Selection() == name {
				name = ""
			}
			g.room.Economy.Select(name)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.Key0) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.room.Economy.Select("")
	}

	for i, k := range buffKeys {
		if i < len(g.buffs) && inpututil.IsKeyJustPressed(k) {
			if err := g.room.PurchaseBuff(g.buffs[i]); err != nil {
				g.say(err.Error())
			} else {
				g.say("bought " + g.buffs[i])
			}
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if pos, ok := g.worldPos(mx, my); ok {
			if u, err := g.room.PlaceSelected(pos); err != nil {
				if !errors.Is(err, ErrNoSelection) {
					g.say(err.Error())
				}
			} else {
				g.say(fmt.Sprintf("placed %s for %d", u.Name, u.Price))
			}
		}
	}

	// P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		for _, s := range speeds {
			if s > g.simSpeed {
				g.simSpeed = s
				break
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}

	// C: copy a debug report of the recent ticks.
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := clipboard.WriteAll(g.room.DebugReport(reportLastTicks)); err != nil {
			g.say("clipboard: " + err.Error())
		} else {
			g.say("debug report copied")
		}
	}
}

// worldPos converts a cursor position to room coordinates.
func (g *Game) worldPos(mx, my int) (Vec2, bool) {
	x := float64(mx - g.offX)
	y := float64(my - g.offY)
	tm := g.room.Tiles
	if x < 0 || y < 0 || x >= tm.WorldWidth() || y >= tm.WorldHeight() {
		return Vec2{}, false
	}
	return Vec2{x, y}, true
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Room exposes the simulated room.
func (g *Game) Room() *Room {
	return g.room
}
