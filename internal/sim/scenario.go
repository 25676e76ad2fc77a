package sim

import (
	"encoding/json"
	"fmt"
)

// Preset identifies a scenario family: initial layout plus hazard behavior.
type Preset string

const (
	PresetCalmBelts      Preset = "calm-belts"
	PresetBinaryMayhem   Preset = "binary-mayhem"
	PresetStarNursery    Preset = "star-nursery"
	PresetBlackHoleArena Preset = "blackhole-arena"
)

// HazardKind indexes the scenario's hazard distribution.
type HazardKind int

const (
	HazardRogueStar HazardKind = iota
	HazardMicroBlackHole
	HazardDebrisStorm
	hazardKindCount
)

// Scenario fully describes a run: (seed, preset, parameters). It is
// immutable once a run starts, read only by the spawner, and JSON
// round-trippable so that replaying it reproduces an identical tick-by-tick
// event sequence regardless of prior history.
type Scenario struct {
	Seed   int64  `json:"seed"`
	Preset Preset `json:"preset"`

	// Initial layout parameters.
	CentralMass  float64   `json:"centralMass,omitempty"` // single-star and arena layouts
	BeltRadii    []float64 `json:"beltRadii,omitempty"`
	BeltCount    int       `json:"beltCount,omitempty"`   // bodies per belt
	BinarySplit  float64   `json:"binarySplit,omitempty"` // binary: half separation
	ClusterCount int       `json:"clusterCount,omitempty"`

	// Hazard behavior. Weights order: rogue star, micro black hole,
	// debris storm. A zero interval disables hazard spawning.
	HazardWeights  [3]float64 `json:"hazardWeights"`
	HazardInterval float64    `json:"hazardInterval"` // seconds between attempts
	HazardAttempts int        `json:"hazardAttempts"` // attempts per interval

	// Player starting state. SpawnPlayer false runs a pure sandbox.
	SpawnPlayer bool    `json:"spawnPlayer"`
	PlayerMass  float64 `json:"playerMass,omitempty"`

	// Mission assigned at run start.
	Mission MissionSpec `json:"mission"`
}

// NewScenario returns the preset's canonical parameter set under the given
// seed.
func NewScenario(preset Preset, seed int64) Scenario {
	s := Scenario{
		Seed:           seed,
		Preset:         preset,
		HazardWeights:  [3]float64{1, 1, 1},
		HazardInterval: 15,
		HazardAttempts: 1,
		SpawnPlayer:    true,
		PlayerMass:     80,
		Mission:        MissionSpec{Objective: ObjectiveSurvive, Target: 60},
	}
	switch preset {
	case PresetCalmBelts:
		s.CentralMass = 6e5
		s.BeltRadii = []float64{260, 520, 980, 1600}
		s.BeltCount = 500
	case PresetBinaryMayhem:
		s.BinarySplit = 300
		s.HazardWeights = [3]float64{2, 0, 1}
		s.Mission = MissionSpec{Objective: ObjectiveSurvive, Target: 90}
	case PresetStarNursery:
		s.ClusterCount = 50
		s.HazardWeights = [3]float64{1, 1, 2}
		s.Mission = MissionSpec{Objective: ObjectiveAbsorbN, Target: 25}
	case PresetBlackHoleArena:
		s.CentralMass = 1.5e6
		s.BeltRadii = []float64{400, 900}
		s.BeltCount = 300
		s.HazardWeights = [3]float64{1, 2, 1}
		s.HazardInterval = 10
		s.Mission = MissionSpec{Objective: ObjectiveEvolveTo, Target: float64(ClassPlanet)}
	}
	return s
}

// SettingsFor returns the preset's canonical settings tuning.
func (sc Scenario) SettingsFor() Settings {
	s := DefaultSettings()
	switch sc.Preset {
	case PresetBinaryMayhem:
		s.G = 200
		s.DT = 0.005
		s.Softening = 8
		s.MaxVelocity = 2500
		s.Theta = 0.8
		s.Mode = CollisionElastic
		s.Restitution = 0.9
		s.ThetaRange = Range{Min: 0.6, Max: 1.2}
		s.SofteningRange = Range{Min: 5, Max: 15}
	case PresetStarNursery:
		s.G = 150
		s.DT = 0.01
		s.Softening = 6
		s.MaxVelocity = 2000
		s.Theta = 0.7
		s.Restitution = 0
		s.ThetaRange = Range{Min: 0.5, Max: 1.1}
		s.SofteningRange = Range{Min: 3, Max: 12}
	case PresetBlackHoleArena:
		s.G = 300
		s.DT = 0.003
		s.Softening = 10
		s.MaxVelocity = 3000
		s.Theta = 0.9
		s.Restitution = 0
		s.ThetaRange = Range{Min: 0.7, Max: 1.5}
		s.SofteningRange = Range{Min: 8, Max: 20}
	default: // calm belts
		s.Restitution = 0
	}
	return s
}

// Validate rejects parameter sets no layout or spawner can honor.
func (sc Scenario) Validate() error {
	switch sc.Preset {
	case PresetCalmBelts, PresetBinaryMayhem, PresetStarNursery, PresetBlackHoleArena:
	default:
		return fmt.Errorf("unknown preset %q", sc.Preset)
	}
	if sc.HazardInterval < 0 {
		return fmt.Errorf("hazardInterval must be >= 0")
	}
	if sc.HazardAttempts < 0 {
		return fmt.Errorf("hazardAttempts must be >= 0")
	}
	for i, w := range sc.HazardWeights {
		if w < 0 {
			return fmt.Errorf("hazardWeights[%d] must be >= 0", i)
		}
	}
	if sc.SpawnPlayer && sc.PlayerMass <= 0 {
		return fmt.Errorf("playerMass must be > 0")
	}
	return sc.Mission.Validate()
}

// Marshal encodes the scenario for the persistence contract.
func (sc Scenario) Marshal() ([]byte, error) {
	return json.Marshal(sc)
}

// UnmarshalScenario decodes and validates a persisted scenario.
func UnmarshalScenario(data []byte) (Scenario, error) {
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return Scenario{}, err
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}
