package game

// IDGenerator hands out process-unique ids. Units, mods and projectiles all
// draw from the same counter so any two ids can be combined into an overlap key.
type IDGenerator struct {
	last int
}

// NextID returns the next id. The first id is 1; 0 is never issued.
func (g *IDGenerator) NextID() int {
	g.last++
	return g.last
}
