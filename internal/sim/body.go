package sim

import "math"

// Class is a body's evolution state, derived from mass alone. Crossing a
// threshold during an absorb is an evolution.
type Class uint8

const (
	ClassAsteroid Class = iota
	ClassPlanet
	ClassStar
	ClassBlackHole
)

// Mass thresholds between classes.
const (
	planetMass    = 500.0
	starMass      = 20_000.0
	blackHoleMass = 1_000_000.0
)

// ClassForMass maps a mass to its evolution class.
func ClassForMass(m float64) Class {
	switch {
	case m < planetMass:
		return ClassAsteroid
	case m < starMass:
		return ClassPlanet
	case m < blackHoleMass:
		return ClassStar
	default:
		return ClassBlackHole
	}
}

// String returns the wire name of the class.
func (c Class) String() string {
	switch c {
	case ClassAsteroid:
		return "asteroid"
	case ClassPlanet:
		return "planet"
	case ClassStar:
		return "star"
	case ClassBlackHole:
		return "black_hole"
	default:
		return "unknown"
	}
}

// Rarity weights scoring: absorbing a rare class is worth less raw score per
// unit of mass, since the mass itself is the reward.
func (c Class) Rarity() float64 {
	switch c {
	case ClassAsteroid:
		return 1
	case ClassPlanet:
		return 5
	case ClassStar:
		return 25
	case ClassBlackHole:
		return 100
	default:
		return 1
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RadiusForMass maps mass to collision radius with a per-class curve, so
// radii grow sublinearly and stay within class-appropriate bands.
func RadiusForMass(m float64) float64 {
	switch ClassForMass(m) {
	case ClassAsteroid:
		return clamp(math.Sqrt(m)*0.12, 1.2, 6.0)
	case ClassPlanet:
		return clamp(math.Sqrt(m)*0.07, 6.0, 16.0)
	case ClassStar:
		return clamp(math.Pow(m, 0.33)*0.6, 16.0, 32.0)
	default:
		return clamp(math.Pow(m, 0.25)*0.9, 32.0, 60.0)
	}
}

// Body is a point mass in the registry. Bodies are owned exclusively by the
// engine and referenced by ID everywhere else; external layers only ever see
// BodySnapshot copies.
type Body struct {
	ID    uint64
	Pos   Vec2
	Vel   Vec2
	Acc   Vec2
	Mass  float64
	Class Class

	Alive  bool
	Hazard bool
	Player bool
}

// Radius returns the body's collision radius, derived from its mass.
func (b *Body) Radius() float64 { return RadiusForMass(b.Mass) }
