package sim

// EventType enum for event classification
type EventType uint8

const (
	EventUnknown EventType = iota
	EventTick              // tick boundary with RNG seed
	EventSpawned
	EventAbsorbed
	EventCollided
	EventDied
	EventEvolved
	EventWon
	EventLost
	EventReset
)

// EventVersion for backwards compatibility in replay files.
const EventVersion uint8 = 1

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventTick:
		return "tick"
	case EventSpawned:
		return "spawned"
	case EventAbsorbed:
		return "absorbed"
	case EventCollided:
		return "collided"
	case EventDied:
		return "died"
	case EventEvolved:
		return "evolved"
	case EventWon:
		return "won"
	case EventLost:
		return "lost"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is one typed outcome in the per-tick log. The log is an ordered
// slice produced by the spawner, integrator and resolver during a tick,
// reduced exactly once by the mission evaluator and stats aggregator, copied
// into the snapshot, then cleared. Events are value types so the audit log
// and snapshot copies never alias engine state.
//
// Fields are a union across event kinds; unused fields are zero and omitted
// on the wire.
type Event struct {
	Version uint8     `json:"version"`
	Type    EventType `json:"type"`
	Tick    uint64    `json:"tick"`

	// BodyID is the primary subject: the spawned body, the absorb winner,
	// the dead body, the evolving body. OtherID is the counterpart where
	// one exists (absorb loser, collision partner).
	BodyID  uint64 `json:"bodyId,omitempty"`
	OtherID uint64 `json:"otherId,omitempty"`

	// Mass and Speed describe the consumed body on absorbs (score inputs)
	// and the spawned body on spawns.
	Mass  float64 `json:"mass,omitempty"`
	Speed float64 `json:"speed,omitempty"`

	// Class is the loser's class on absorbs and the new class on
	// evolutions.
	Class Class `json:"class,omitempty"`

	// Player marks events involving the player body: player-won absorbs,
	// player collisions (damage), player death.
	Player bool `json:"player,omitempty"`

	// Seed is the scenario RNG seed, recorded on tick events for replay.
	Seed int64 `json:"seed,omitempty"`
}

// TypeName is the wire name of the event type, for JSON consumers.
func (e Event) TypeName() string { return e.Type.String() }
