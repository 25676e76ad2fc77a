package sim

import "fmt"

// Objective is the mission's win condition kind.
type Objective string

const (
	// ObjectiveSurvive wins after Target seconds of survival.
	ObjectiveSurvive Objective = "survive-duration"
	// ObjectiveAbsorbN wins after the player absorbs Target bodies.
	ObjectiveAbsorbN Objective = "absorb-n"
	// ObjectiveEvolveTo wins when the player's class reaches Target.
	ObjectiveEvolveTo Objective = "evolve-to-class"
)

// MissionSpec is the immutable objective definition carried by a scenario.
type MissionSpec struct {
	Objective Objective `json:"objective"`
	Target    float64   `json:"target"`
}

// Validate rejects specs with no reachable win condition.
func (m MissionSpec) Validate() error {
	switch m.Objective {
	case ObjectiveSurvive, ObjectiveAbsorbN, ObjectiveEvolveTo:
	default:
		return fmt.Errorf("unknown objective %q", m.Objective)
	}
	if m.Target <= 0 {
		return fmt.Errorf("mission target must be > 0")
	}
	return nil
}

// RunState is the mission's completion state. The initial state is
// in-progress; won and lost are terminal and absorb all further events.
type RunState string

const (
	RunInProgress RunState = "in-progress"
	RunWon        RunState = "won"
	RunLost       RunState = "lost"
)

// Mission tracks objective progress for one run. It is a pure event-log
// reducer: Reduce maps (state, ordered event batch, dt) to the next state
// and reports a win/loss transition at most once.
type Mission struct {
	Spec     MissionSpec `json:"spec"`
	Progress float64     `json:"progress"`
	State    RunState    `json:"state"`
}

// NewMission starts the objective in progress.
func NewMission(spec MissionSpec) Mission {
	return Mission{Spec: spec, State: RunInProgress}
}

// Reduce consumes one tick's event batch. Player death forces a loss
// regardless of objective. Once terminal, events are ignored. The returned
// transition is EventWon or EventLost on the tick the state changes, and
// EventUnknown otherwise.
func (m Mission) Reduce(events []Event, dt float64) (Mission, EventType) {
	if m.State != RunInProgress {
		return m, EventUnknown
	}

	for _, ev := range events {
		if ev.Type == EventDied && ev.Player {
			m.State = RunLost
			return m, EventLost
		}
	}

	switch m.Spec.Objective {
	case ObjectiveSurvive:
		m.Progress += dt
	case ObjectiveAbsorbN:
		for _, ev := range events {
			if ev.Type == EventAbsorbed && ev.Player {
				m.Progress++
			}
		}
	case ObjectiveEvolveTo:
		for _, ev := range events {
			if ev.Type == EventEvolved && ev.Player && float64(ev.Class) > m.Progress {
				m.Progress = float64(ev.Class)
			}
		}
	}

	if m.Progress >= m.Spec.Target {
		m.State = RunWon
		return m, EventWon
	}
	return m, EventUnknown
}
