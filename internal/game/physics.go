package game

import "math"

// BodyShape selects the collider used by a Body.
type BodyShape uint8

const (
	ShapeCircle BodyShape = iota
	ShapeBox
)

// Bounds clamps a body's center. A value of -1 leaves that side unbounded.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// Body is a dynamic arcade-physics body. Velocity is px/s, acceleration px/s².
type Body struct {
	Center   Vec2
	Velocity Vec2
	Accel    Vec2
	Rotation float64
	Shape    BodyShape
	Radius   float64 // circle radius
	HalfW    float64 // box half extents
	HalfH    float64
	Bounds   *Bounds
	// BlockedByWalls makes integration stop at solid tiles instead of passing through.
	BlockedByWalls bool
	// Owner is the *Unit or *Projectile riding this body.
	Owner any

	alive bool
	world *World
}

// Alive reports whether the body has not been destroyed.
func (b *Body) Alive() bool { return b != nil && b.alive }

// Destroy removes the body from the world and every group. Safe to call from
// inside collision callbacks; the body is skipped for the rest of the step.
func (b *Body) Destroy() {
	if !b.alive {
		return
	}
	b.alive = false
	b.world.dirty = true
}

// SetScale multiplies the collider size.
func (b *Body) SetScale(s float64) {
	b.Radius *= s
	b.HalfW *= s
	b.HalfH *= s
}

// Group is a set of bodies registered together with colliders and overlaps.
type Group struct {
	bodies []*Body
}

// Add puts b in the group.
func (g *Group) Add(b *Body) { g.bodies = append(g.bodies, b) }

// Remove takes b out of the group.
func (g *Group) Remove(b *Body) {
	for i, o := range g.bodies {
		if o == b {
			g.bodies = append(g.bodies[:i], g.bodies[i+1:]...)
			return
		}
	}
}

// Bodies returns the live bodies in the group.
func (g *Group) Bodies() []*Body {
	out := make([]*Body, 0, len(g.bodies))
	for _, b := range g.bodies {
		if b.alive {
			out = append(out, b)
		}
	}
	return out
}

func (g *Group) compact() {
	kept := g.bodies[:0]
	for _, b := range g.bodies {
		if b.alive {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(g.bodies); i++ {
		g.bodies[i] = nil
	}
	g.bodies = kept
}

// Collider is a handle returned by AddGeometryCollider / AddOverlap.
type Collider struct {
	a, b     *Group
	geometry func(*Body)
	overlap  func(a, b *Body)
	active   bool
}

// World owns every body and dispatches geometry and overlap callbacks once
// per Step for every contact.
type World struct {
	tiles     *TileMap
	bodies    []*Body
	groups    []*Group
	colliders []*Collider
	dirty     bool
}

// NewWorld creates a physics world over the room tiles.
func NewWorld(tm *TileMap) *World {
	return &World{tiles: tm}
}

// NewCircle spawns a circular body centered at p.
func (w *World) NewCircle(p Vec2, radius float64) *Body {
	b := &Body{Center: p, Shape: ShapeCircle, Radius: radius, alive: true, world: w}
	w.bodies = append(w.bodies, b)
	return b
}

// NewBox spawns a square body of edge size centered at p.
func (w *World) NewBox(p Vec2, size float64) *Body {
	b := &Body{Center: p, Shape: ShapeBox, HalfW: size / 2, HalfH: size / 2, alive: true, world: w}
	w.bodies = append(w.bodies, b)
	return b
}

// NewGroup creates an empty body group.
func (w *World) NewGroup() *Group {
	g := &Group{}
	w.groups = append(w.groups, g)
	return g
}

// AddGeometryCollider calls fn for each body of g touching a solid tile.
func (w *World) AddGeometryCollider(g *Group, fn func(*Body)) *Collider {
	c := &Collider{a: g, geometry: fn, active: true}
	w.colliders = append(w.colliders, c)
	return c
}

// AddOverlap calls fn(a, b) for each overlapping pair with a in ga and b in gb.
func (w *World) AddOverlap(ga, gb *Group, fn func(a, b *Body)) *Collider {
	c := &Collider{a: ga, b: gb, overlap: fn, active: true}
	w.colliders = append(w.colliders, c)
	return c
}

// RemoveCollider stops c from dispatching.
func (w *World) RemoveCollider(c *Collider) {
	if c == nil {
		return
	}
	c.active = false
	for i, o := range w.colliders {
		if o == c {
			w.colliders = append(w.colliders[:i], w.colliders[i+1:]...)
			return
		}
	}
}

// Bodies returns every live body.
func (w *World) Bodies() []*Body {
	w.compact()
	return w.bodies
}

// Step integrates all bodies over deltaMs, then dispatches geometry
// collisions followed by overlaps.
func (w *World) Step(deltaMs float64) {
	w.compact()
	dt := deltaMs / 1000
	for _, b := range w.bodies {
		w.integrate(b, dt)
	}

	// Colliders may be removed by their own callbacks.
	colliders := append([]*Collider(nil), w.colliders...)
	for _, c := range colliders {
		if !c.active {
			continue
		}
		if c.geometry != nil {
			for _, b := range c.a.Bodies() {
				if b.alive && c.active && w.touchesGeometry(b) {
					c.geometry(b)
				}
			}
			continue
		}
		as, bs := c.a.Bodies(), c.b.Bodies()
		for _, a := range as {
			for _, b := range bs {
				if !c.active || !a.alive {
					break
				}
				if a == b || !b.alive {
					continue
				}
				if bodiesOverlap(a, b) {
					c.overlap(a, b)
				}
			}
		}
	}
	w.compact()
}

func (w *World) integrate(b *Body, dt float64) {
	b.Velocity = b.Velocity.Add(b.Accel.Scale(dt))
	if !b.BlockedByWalls || w.tiles == nil {
		b.Center = b.Center.Add(b.Velocity.Scale(dt))
	} else {
		// Axis-separated moves so a body slides along walls.
		prev := b.Center
		b.Center.X += b.Velocity.X * dt
		if w.touchesGeometry(b) {
			b.Center.X = prev.X
			b.Velocity.X = 0
		}
		b.Center.Y += b.Velocity.Y * dt
		if w.touchesGeometry(b) {
			b.Center.Y = prev.Y
			b.Velocity.Y = 0
		}
	}
	clampToBounds(b)
}

// clampToBounds pins the center inside b.Bounds, zeroing velocity on any clamped axis.
func clampToBounds(b *Body) bool {
	if b.Bounds == nil {
		return false
	}
	clamped := false
	bd := b.Bounds
	if bd.MinX != -1 && b.Center.X < bd.MinX {
		b.Center.X, b.Velocity.X, clamped = bd.MinX, 0, true
	}
	if bd.MaxX != -1 && b.Center.X > bd.MaxX {
		b.Center.X, b.Velocity.X, clamped = bd.MaxX, 0, true
	}
	if bd.MinY != -1 && b.Center.Y < bd.MinY {
		b.Center.Y, b.Velocity.Y, clamped = bd.MinY, 0, true
	}
	if bd.MaxY != -1 && b.Center.Y > bd.MaxY {
		b.Center.Y, b.Velocity.Y, clamped = bd.MaxY, 0, true
	}
	return clamped
}

func (w *World) compact() {
	if !w.dirty {
		return
	}
	kept := w.bodies[:0]
	for _, b := range w.bodies {
		if b.alive {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(w.bodies); i++ {
		w.bodies[i] = nil
	}
	w.bodies = kept
	for _, g := range w.groups {
		g.compact()
	}
	w.dirty = false
}

// extents returns the body's AABB half sizes.
func (b *Body) extents() (float64, float64) {
	if b.Shape == ShapeCircle {
		return b.Radius, b.Radius
	}
	return b.HalfW, b.HalfH
}

func (w *World) touchesGeometry(b *Body) bool {
	if w.tiles == nil {
		return false
	}
	hx, hy := b.extents()
	size := float64(w.tiles.Size)
	c0 := int(math.Floor((b.Center.X - hx) / size))
	c1 := int(math.Floor((b.Center.X + hx) / size))
	r0 := int(math.Floor((b.Center.Y - hy) / size))
	r1 := int(math.Floor((b.Center.Y + hy) / size))
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if !w.tiles.Collides(col, row) {
				continue
			}
			x, y := float64(col)*size, float64(row)*size
			if bodyOverlapsRect(b, x, y, x+size, y+size) {
				return true
			}
		}
	}
	return false
}

func bodyOverlapsRect(b *Body, minX, minY, maxX, maxY float64) bool {
	if b.Shape == ShapeCircle {
		nx := clampf(b.Center.X, minX, maxX)
		ny := clampf(b.Center.Y, minY, maxY)
		dx, dy := b.Center.X-nx, b.Center.Y-ny
		return dx*dx+dy*dy < b.Radius*b.Radius
	}
	return b.Center.X-b.HalfW < maxX && b.Center.X+b.HalfW > minX &&
		b.Center.Y-b.HalfH < maxY && b.Center.Y+b.HalfH > minY
}

func bodiesOverlap(a, b *Body) bool {
	switch {
	case a.Shape == ShapeCircle && b.Shape == ShapeCircle:
		r := a.Radius + b.Radius
		return a.Center.Sub(b.Center).Dot(a.Center.Sub(b.Center)) < r*r
	case a.Shape == ShapeBox:
		return bodyOverlapsRect(b, a.Center.X-a.HalfW, a.Center.Y-a.HalfH, a.Center.X+a.HalfW, a.Center.Y+a.HalfH)
	default:
		return bodyOverlapsRect(a, b.Center.X-b.HalfW, b.Center.Y-b.HalfH, b.Center.X+b.HalfW, b.Center.Y+b.HalfH)
	}
}

// Nearest returns the closest live body within radius of p accepted by keep.
func (w *World) Nearest(p Vec2, radius float64, keep func(*Body) bool) *Body {
	var best *Body
	bestDist := radius
	for _, b := range w.bodies {
		if !b.alive || !keep(b) {
			continue
		}
		if d := b.Center.Dist(p); d <= bestDist {
			best, bestDist = b, d
		}
	}
	return best
}
