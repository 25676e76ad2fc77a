package sim

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"gravwell/internal/sim/spatial"
)

// Engine is the simulation core: it owns the body registry, the quadtree
// force solver, the collision resolver, the spawner, and the per-run mission
// and stats aggregates. All mutation happens inside the tick under the
// engine lock; readers consume lock-free snapshots from the pool.
type Engine struct {
	mu sync.RWMutex

	limits   Limits
	scenario Scenario
	settings Settings
	pending  *Settings // applied at the next tick boundary

	intents []Intent

	// Deterministic RNG: the spawner is its only consumer, so a run is
	// fully determined by (seed, preset, parameters, intent sequence).
	rng *rand.Rand

	bodies   []Body
	nextID   uint64
	playerID uint64
	tick     uint64

	// Spatial structures, rebuilt every tick.
	tree *spatial.Quadtree
	grid *spatial.HashGrid

	// Reused tick scratch.
	xs, ys, ms   []float64
	forceScratch []int32
	candidates   []int32
	pairs        []pair
	tickEvents   []Event

	mission Mission
	stats   Stats

	snapshots *SnapshotPool
	audit     *AuditLog

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	// Observer hook for metrics; called at the end of each tick with the
	// tick duration and live body count.
	tickObserver func(elapsed time.Duration, bodies int)
}

// NewEngine builds an engine for the scenario with its canonical settings
// and spawns the initial layout.
func NewEngine(scenario Scenario, limits Limits) *Engine {
	e := &Engine{
		limits:       limits,
		scenario:     scenario,
		settings:     scenario.SettingsFor(),
		rng:          rand.New(rand.NewSource(scenario.Seed)),
		bodies:       make([]Body, 0, limits.MaxBodies),
		nextID:       1,
		tree:         spatial.NewQuadtree(limits.MaxBodies),
		grid:         spatial.NewHashGrid(),
		intents:      make([]Intent, 0, limits.MaxIntentQueue),
		forceScratch: make([]int32, 0, 128),
		tickEvents:   make([]Event, 0, limits.MaxEventsPerTick),
		mission:      NewMission(scenario.Mission),
		stats:        NewStats(),
		snapshots:    NewSnapshotPool(limits),
		audit:        NewAuditLog(),
	}
	e.spawnInitial()
	e.publishSnapshot()
	return e
}

// Start begins the tick loop at 1/DT ticks per second.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	// Each run gets a fresh stop channel so Start works again after Stop.
	e.stopChan = make(chan struct{})
	stop := e.stopChan
	period := time.Duration(e.settings.DT * float64(time.Second))
	e.ticker = time.NewTicker(period)
	ticker := e.ticker
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.Step()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("engine started: preset=%s seed=%d period=%s",
		e.scenario.Preset, e.scenario.Seed, period)
}

// Stop halts the tick loop. The engine stays queryable after stopping.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("engine stopped")
}

// AuditLog exposes the engine's audit sink so callers can start persistence.
func (e *Engine) AuditLog() *AuditLog { return e.audit }

// SetTickObserver installs a per-tick metrics callback. Must be called
// before Start.
func (e *Engine) SetTickObserver(fn func(elapsed time.Duration, bodies int)) {
	e.mu.Lock()
	e.tickObserver = fn
	e.mu.Unlock()
}

// Step advances the simulation one tick. Exposed for deterministic stepping
// in tests and replay tooling; the tick loop calls it on the ticker.
func (e *Engine) Step() {
	start := time.Now()

	e.mu.Lock()
	e.step()
	observer := e.tickObserver
	bodies := len(e.bodies)
	e.mu.Unlock()

	if observer != nil {
		observer(time.Since(start), bodies)
	}
}

// step runs the tick pipeline under the engine lock:
// settings, intents, spawner, drift, forces, kick, collisions, compaction,
// aggregates, snapshot.
func (e *Engine) step() {
	e.tick++
	dt := e.settings.DT

	if e.pending != nil {
		e.settings = *e.pending
		e.pending = nil
	}
	e.applyIntents()
	e.stepHazards()

	e.kickDrift(dt)
	e.buildTree()
	e.solveForces()
	e.kick(dt, e.settings.MaxVelocity)

	e.resolveCollisions()
	if !e.consistent() {
		log.Printf("consistency failure at tick %d, forcing reset", e.tick)
		e.resetLocked()
		return
	}
	e.compactDead()

	var transition EventType
	e.mission, transition = e.mission.Reduce(e.tickEvents, dt)
	switch transition {
	case EventWon:
		e.emit(Event{Type: EventWon, BodyID: e.playerID, Player: true})
	case EventLost:
		e.emit(Event{Type: EventLost, BodyID: e.playerID, Player: true})
	}
	e.stats = e.stats.Reduce(e.tickEvents, dt, e.mission.State)

	e.audit.Emit(Event{Type: EventTick, Tick: e.tick, Seed: e.scenario.Seed})
	e.audit.EmitAll(e.tickEvents)

	e.publishSnapshot()
	e.tickEvents = e.tickEvents[:0]
}

// buildTree refreshes the quadtree from the live registry. Dead bodies
// cannot appear here: compaction runs before the tick ends.
func (e *Engine) buildTree() {
	n := len(e.bodies)
	e.xs = e.xs[:0]
	e.ys = e.ys[:0]
	e.ms = e.ms[:0]
	for i := 0; i < n; i++ {
		e.xs = append(e.xs, e.bodies[i].Pos.X)
		e.ys = append(e.ys, e.bodies[i].Pos.Y)
		e.ms = append(e.ms, e.bodies[i].Mass)
	}
	e.tree.Build(e.xs, e.ys, e.ms)
}

// consistent scans for physically invalid bodies. Returns false when any
// live body carries a non-positive mass or a non-finite position, which can
// only happen through a resolver bug.
func (e *Engine) consistent() bool {
	for i := range e.bodies {
		b := &e.bodies[i]
		if !b.Alive {
			continue
		}
		if b.Mass <= 0 {
			return false
		}
		if math.IsNaN(b.Pos.X) || math.IsNaN(b.Pos.Y) ||
			math.IsInf(b.Pos.X, 0) || math.IsInf(b.Pos.Y, 0) {
			return false
		}
	}
	return true
}

// emit appends an event to the current tick's log, dropping past the cap.
func (e *Engine) emit(ev Event) {
	if len(e.tickEvents) >= e.limits.MaxEventsPerTick {
		return
	}
	ev.Version = EventVersion
	ev.Tick = e.tick
	e.tickEvents = append(e.tickEvents, ev)
}

// player returns the live player body, or nil.
func (e *Engine) player() *Body {
	if e.playerID == 0 {
		return nil
	}
	for i := range e.bodies {
		if e.bodies[i].ID == e.playerID && e.bodies[i].Alive {
			return &e.bodies[i]
		}
	}
	return nil
}

// publishSnapshot copies the tick's outcome into the next pool slot.
func (e *Engine) publishSnapshot() {
	snap := e.snapshots.AcquireWrite()
	snap.Tick = e.tick
	snap.Seed = e.scenario.Seed
	snap.Mission = e.mission
	snap.Stats = e.stats
	snap.State = e.mission.State

	hazards := 0
	for i := range e.bodies {
		b := &e.bodies[i]
		if !b.Alive {
			continue
		}
		if b.Hazard {
			hazards++
		}
		if len(snap.Bodies) >= e.limits.MaxSnapshotBodies {
			continue
		}
		if b.Player {
			snap.PlayerIndex = len(snap.Bodies)
		}
		snap.Bodies = append(snap.Bodies, BodySnapshot{
			ID:     b.ID,
			X:      b.Pos.X,
			Y:      b.Pos.Y,
			VX:     b.Vel.X,
			VY:     b.Vel.Y,
			Mass:   b.Mass,
			Radius: b.Radius(),
			Class:  b.Class.String(),
			Alive:  b.Alive,
			Hazard: b.Hazard,
			Player: b.Player,
		})
	}
	snap.Events = append(snap.Events, e.tickEvents...)
	snap.BodyCount = len(e.bodies)
	snap.HazardCount = hazards
	e.snapshots.PublishWrite()
}

// resetLocked rebuilds the run from its scenario: reseeded RNG, fresh
// registry and aggregates, tick zero. Caller holds the lock.
func (e *Engine) resetLocked() {
	e.rng = rand.New(rand.NewSource(e.scenario.Seed))
	e.bodies = e.bodies[:0]
	e.nextID = 1
	e.playerID = 0
	e.tick = 0
	e.tickEvents = e.tickEvents[:0]
	e.settings = e.scenario.SettingsFor()
	e.pending = nil
	e.mission = NewMission(e.scenario.Mission)
	e.stats = NewStats()

	e.spawnInitial()
	ev := Event{Type: EventReset, Version: EventVersion, Seed: e.scenario.Seed}
	e.audit.Emit(ev)
	e.publishSnapshot()
}

// Reset restarts the current scenario from tick zero.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

// Snapshot returns the latest published snapshot. Read-only; valid for two
// more ticks.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshots.AcquireRead()
}

// Mission returns the current mission aggregate.
func (e *Engine) Mission() Mission {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mission
}

// Stats returns the current run stats.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// Settings returns the active settings (pending updates not yet applied).
func (e *Engine) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// Scenario returns the active scenario.
func (e *Engine) Scenario() Scenario {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenario
}

// Tick returns the current tick number.
func (e *Engine) Tick() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tick
}

// BodyCount returns the number of registered bodies.
func (e *Engine) BodyCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.bodies)
}

// UpdateSettings validates and stages a settings update for the next tick
// boundary. Invalid settings are rejected whole; the active settings are
// untouched.
func (e *Engine) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = &s
	return nil
}

// SetScenario validates and installs a new scenario, then resets to it.
func (e *Engine) SetScenario(sc Scenario) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenario = sc
	e.resetLocked()
	return nil
}
