package game

import "math"

// Vec2 is a 2D point or direction in world pixels.
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2   { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64     { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64           { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64    { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec2) IsZero() bool           { return v.X == 0 && v.Y == 0 }
func (v Vec2) Negate() Vec2           { return Vec2{-v.X, -v.Y} }
func (v Vec2) Angle() float64         { return math.Atan2(v.Y, v.X) }
func (v Vec2) Perp() Vec2             { return Vec2{-v.Y, v.X} }
func (v Vec2) Eq(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Normalize returns the unit vector in v's direction, or zero for a zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rotate returns v rotated by rad radians.
func (v Vec2) Rotate(rad float64) Vec2 {
	s, c := math.Sincos(rad)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Limit caps the length of v at max.
func (v Vec2) Limit(max float64) Vec2 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// FromAngle returns the unit vector pointing at rad.
func FromAngle(rad float64) Vec2 {
	s, c := math.Sincos(rad)
	return Vec2{c, s}
}

// normalizeAngle wraps an angle into (-π, π].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// rotateToward turns current toward target by at most maxStep radians.
func rotateToward(current, target, maxStep float64) float64 {
	diff := normalizeAngle(target - current)
	if math.Abs(diff) <= maxStep {
		return target
	}
	if diff > 0 {
		return current + maxStep
	}
	return current - maxStep
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
