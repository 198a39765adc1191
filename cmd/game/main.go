package main

import (
	"log"

	"github.com/Garsondee/Room-Defense/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	g := game.New()
	w, h := g.Layout(0, 0)
	ebiten.SetWindowTitle("Room Defense")
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
