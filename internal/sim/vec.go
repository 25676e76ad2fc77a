package sim

import "math"

// Vec2 is a 2D vector of float64 components. Methods are value-based and
// allocation-free.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }

// Normalized returns the unit vector, or the zero vector for zero input.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Perp returns the counterclockwise perpendicular vector.
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// ClampLen limits the vector to the given maximum length.
func (v Vec2) ClampLen(max float64) Vec2 {
	l2 := v.LenSq()
	if max <= 0 || l2 <= max*max {
		return v
	}
	return v.Scale(max / math.Sqrt(l2))
}

// fromAngle returns the unit vector at the given angle in radians.
func fromAngle(a float64) Vec2 {
	return Vec2{math.Cos(a), math.Sin(a)}
}
