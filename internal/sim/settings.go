package sim

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CollisionMode selects how overlapping bodies are resolved.
type CollisionMode uint8

const (
	// CollisionAbsorb merges the pair: the heavier body gains the
	// lighter body's mass and the lighter body dies.
	CollisionAbsorb CollisionMode = iota
	// CollisionElastic bounces the pair with a restitution coefficient.
	CollisionElastic
)

func (m CollisionMode) String() string {
	if m == CollisionElastic {
		return "elastic"
	}
	return "absorb"
}

// MarshalJSON encodes the mode as its wire name.
func (m CollisionMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes the mode from its wire name.
func (m *CollisionMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mode, err := ParseCollisionMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseCollisionMode parses the wire name of a collision mode.
func ParseCollisionMode(s string) (CollisionMode, error) {
	switch s {
	case "absorb":
		return CollisionAbsorb, nil
	case "elastic":
		return CollisionElastic, nil
	default:
		return CollisionAbsorb, fmt.Errorf("unknown collision mode %q", s)
	}
}

// Range is a closed [Min, Max] interval used by the adaptive solver knobs.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// lerp interpolates Min..Max by t in [0, 1].
func (r Range) lerp(t float64) float64 {
	return r.Min + t*(r.Max-r.Min)
}

// Settings is the tunable bundle applied between ticks. Invalid bundles are
// rejected by Validate and the previous bundle stays in effect.
type Settings struct {
	G           float64       `json:"g"`
	DT          float64       `json:"dt"`
	Theta       float64       `json:"theta"`
	Softening   float64       `json:"softening"`
	MaxVelocity float64       `json:"maxVelocity"`
	Mode        CollisionMode `json:"collisionMode"`
	Restitution float64       `json:"restitution"`
	MaxHazards  int           `json:"maxHazards"`

	// Workers is the force-solver worker count; values <= 1 select the
	// sequential path. Both paths are numerically identical.
	Workers int `json:"workers"`

	// Adaptive solver knobs: when enabled, theta and softening are
	// interpolated per body from local tree depth.
	AdaptiveTheta     bool  `json:"adaptiveTheta"`
	ThetaRange        Range `json:"thetaRange"`
	AdaptiveSoftening bool  `json:"adaptiveSoftening"`
	SofteningRange    Range `json:"softeningRange"`

	// Display hints are accepted on the settings surface and ignored by
	// the core; presentation layers read them back from GET /api/settings.
	Palette string `json:"palette,omitempty"`
}

// DefaultSettings returns the calm-belts tuning.
func DefaultSettings() Settings {
	return Settings{
		G:                 120,
		DT:                0.008,
		Theta:             0.6,
		Softening:         4,
		MaxVelocity:       1800,
		Mode:              CollisionAbsorb,
		Restitution:       0.8,
		MaxHazards:        12,
		Workers:           0,
		AdaptiveTheta:     true,
		ThetaRange:        Range{Min: 0.4, Max: 1.0},
		AdaptiveSoftening: true,
		SofteningRange:    Range{Min: 2.0, Max: 10.0},
	}
}

// Validation errors returned by Settings.Validate.
var (
	ErrBadTheta       = errors.New("theta must be > 0")
	ErrBadDT          = errors.New("dt must be > 0")
	ErrBadSoftening   = errors.New("softening must be >= 0")
	ErrBadRestitution = errors.New("restitution must be in [0, 1]")
	ErrBadHazardCap   = errors.New("maxHazards must be >= 0")
	ErrBadGravity     = errors.New("g must be > 0")
)

// Validate reports the first constraint violation, or nil for a usable
// bundle.
func (s Settings) Validate() error {
	switch {
	case s.Theta <= 0:
		return ErrBadTheta
	case s.DT <= 0:
		return ErrBadDT
	case s.Softening < 0:
		return ErrBadSoftening
	case s.Restitution < 0 || s.Restitution > 1:
		return ErrBadRestitution
	case s.MaxHazards < 0:
		return ErrBadHazardCap
	case s.G <= 0:
		return ErrBadGravity
	}
	if s.AdaptiveTheta && (s.ThetaRange.Min <= 0 || s.ThetaRange.Max < s.ThetaRange.Min) {
		return ErrBadTheta
	}
	if s.AdaptiveSoftening && (s.SofteningRange.Min < 0 || s.SofteningRange.Max < s.SofteningRange.Min) {
		return ErrBadSoftening
	}
	return nil
}
