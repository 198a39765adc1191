package game

import "math"

// HasLineOfSight returns true if a straight line from a to b does not
// intersect any wall rectangle. Uses simple ray-vs-AABB tests.
func HasLineOfSight(a, b Vec2, walls []rect) bool {
	for _, w := range walls {
		if rayIntersectsAABB(a.X, a.Y, b.X, b.Y,
			float64(w.x), float64(w.y),
			float64(w.x+w.w), float64(w.y+w.h)) {
			return false
		}
	}
	return true
}

// HasClearLine is HasLineOfSight for a corridor of the given width: the
// center line and both edges must be unobstructed.
func HasClearLine(a, b Vec2, width float64, walls []rect) bool {
	if !HasLineOfSight(a, b, walls) {
		return false
	}
	if width <= 0 {
		return true
	}
	off := b.Sub(a).Normalize().Perp().Scale(width / 2)
	if off.IsZero() {
		return true
	}
	return HasLineOfSight(a.Add(off), b.Add(off), walls) &&
		HasLineOfSight(a.Sub(off), b.Sub(off), walls)
}

// rayAABBHitT returns the first segment parameter t in [0,1] where the line
// from (ox,oy)->(ex,ey) enters the AABB. The bool is false when no hit exists.
func rayAABBHitT(ox, oy, ex, ey, minX, minY, maxX, maxY float64) (float64, bool) {
	dx := ex - ox
	dy := ey - oy

	tMin := 0.0
	tMax := 1.0

	// Check X slab
	if math.Abs(dx) < 1e-12 {
		if ox < minX || ox > maxX {
			return 0, false
		}
	} else {
		invD := 1.0 / dx
		t1 := (minX - ox) * invD
		t2 := (maxX - ox) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	// Check Y slab
	if math.Abs(dy) < 1e-12 {
		if oy < minY || oy > maxY {
			return 0, false
		}
	} else {
		invD := 1.0 / dy
		t1 := (minY - oy) * invD
		t2 := (maxY - oy) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 || tMin > 1 {
		return 0, false
	}
	return tMin, true
}

// rayIntersectsAABB checks if the line segment from (ox,oy)->(ex,ey)
// intersects the axis-aligned bounding box defined by (minX,minY)-(maxX,maxY).
func rayIntersectsAABB(ox, oy, ex, ey, minX, minY, maxX, maxY float64) bool {
	_, hit := rayAABBHitT(ox, oy, ex, ey, minX, minY, maxX, maxY)
	return hit
}
