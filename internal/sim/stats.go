package sim

// Stats accumulates score, streaks and survival time from the event log. It
// is a pure reducer like Mission: no event is counted twice because the
// engine hands each tick's batch to Reduce exactly once.
type Stats struct {
	Score        float64 `json:"score"`
	Multiplier   float64 `json:"multiplier"`
	Streak       int     `json:"streak"`
	BestStreak   int     `json:"bestStreak"`
	Absorbed     int     `json:"absorbed"`
	SurvivalTime float64 `json:"survivalTime"`
}

const (
	baseMultiplier = 1.0
	multiplierStep = 0.1 // growth per streak absorb
	multiplierCeil = 5.0
)

// NewStats returns the baseline aggregate.
func NewStats() Stats {
	return Stats{Multiplier: baseMultiplier}
}

// Reduce consumes one tick's event batch in order. Player absorbs score
// mass * speed / rarity scaled by the streak multiplier; any damage-taking
// event (a collision involving the player, or player death) resets the
// streak to baseline. Events are processed in log order so an absorb
// followed by damage in the same tick keeps the absorb's scored value.
func (s Stats) Reduce(events []Event, dt float64, state RunState) Stats {
	if state == RunInProgress {
		s.SurvivalTime += dt
	}

	for _, ev := range events {
		switch ev.Type {
		case EventAbsorbed:
			if !ev.Player {
				continue
			}
			s.Absorbed++
			s.Streak++
			if s.Streak > s.BestStreak {
				s.BestStreak = s.Streak
			}
			s.Multiplier = baseMultiplier + multiplierStep*float64(s.Streak)
			if s.Multiplier > multiplierCeil {
				s.Multiplier = multiplierCeil
			}
			gain := ev.Mass * ev.Speed / ev.Class.Rarity()
			s.Score += gain * s.Multiplier

		case EventCollided:
			if ev.Player {
				s.Streak = 0
				s.Multiplier = baseMultiplier
			}

		case EventDied:
			if ev.Player {
				s.Streak = 0
				s.Multiplier = baseMultiplier
			}
		}
	}
	return s
}
