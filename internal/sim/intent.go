package sim

import "math"

// Player thrust tuning. Thrust is a fixed force applied for one tick, so a
// heavier player accelerates more sluggishly.
const (
	thrustForce = 380.0
	boostFactor = 1.75
)

// IntentKind names a queued player action.
type IntentKind int

const (
	IntentThrust IntentKind = iota
	IntentBurst
	IntentReset
)

// BurstIntent scatters a ring of debris bodies. Count is clamped to the
// engine's burst limit when applied.
type BurstIntent struct {
	Center   Vec2    `json:"center"`
	Radius   float64 `json:"radius"`
	Count    int     `json:"count"`
	BaseMass float64 `json:"baseMass"`
	Speed    float64 `json:"speed"`
}

// Intent is a queued player action applied at the start of the next tick.
type Intent struct {
	Kind   IntentKind
	Burst  BurstIntent
	Thrust Vec2
	Boost  bool
}

// QueueIntent adds an intent to the queue consumed by the next tick. Returns
// false when the queue is full; callers report back-pressure to the client
// instead of blocking the tick loop.
func (e *Engine) QueueIntent(in Intent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.intents) >= e.limits.MaxIntentQueue {
		return false
	}
	e.intents = append(e.intents, in)
	return true
}

// applyIntents drains the intent queue. A reset intent discards everything
// queued behind it; thrust and burst apply in arrival order.
func (e *Engine) applyIntents() {
	for _, in := range e.intents {
		switch in.Kind {
		case IntentReset:
			e.intents = e.intents[:0]
			e.resetLocked()
			return
		case IntentThrust:
			e.applyThrust(in.Thrust, in.Boost)
		case IntentBurst:
			e.spawnBurst(in.Burst, false)
		}
	}
	e.intents = e.intents[:0]
}

// applyThrust accelerates the player along dir for one tick. Zero
// directions and dead players are ignored.
func (e *Engine) applyThrust(dir Vec2, boost bool) {
	p := e.player()
	if p == nil || dir.LenSq() == 0 {
		return
	}
	force := thrustForce
	if boost {
		force *= boostFactor
	}
	accel := force / math.Max(p.Mass, 1)
	p.Vel = p.Vel.Add(dir.Normalized().Scale(accel * e.settings.DT))
}
