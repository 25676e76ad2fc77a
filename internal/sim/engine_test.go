package sim

import (
	"math"
	"testing"
	"time"
)

// sandboxScenario is an empty world for tests that place bodies by hand.
func sandboxScenario() Scenario {
	return Scenario{
		Seed:    1,
		Preset:  PresetCalmBelts,
		Mission: MissionSpec{Objective: ObjectiveSurvive, Target: 1e9},
	}
}

// sandboxEngine returns an engine with no bodies, no hazards and a mission
// that never terminates during a test.
func sandboxEngine() *Engine {
	return NewEngine(sandboxScenario(), DefaultLimits)
}

// TestNewEngineSpawnsScenario verifies the initial layout and player spawn
func TestNewEngineSpawnsScenario(t *testing.T) {
	sc := NewScenario(PresetStarNursery, 42)
	e := NewEngine(sc, DefaultLimits)

	if e.BodyCount() != sc.ClusterCount+1 {
		t.Errorf("expected %d bodies (cluster + player), got %d", sc.ClusterCount+1, e.BodyCount())
	}

	p := e.player()
	if p == nil {
		t.Fatal("player not spawned")
	}
	if p.Mass != sc.PlayerMass {
		t.Errorf("player mass %g, want %g", p.Mass, sc.PlayerMass)
	}
	if !p.Player {
		t.Error("player flag not set")
	}
}

// TestEngineStartStop verifies the tick loop starts and stops without panics
func TestEngineStartStop(t *testing.T) {
	e := NewEngine(NewScenario(PresetStarNursery, 3), DefaultLimits)

	e.Start()
	time.Sleep(50 * time.Millisecond)
	e.Stop()

	// Should not panic on double stop
	e.Stop()
}

// TestEngineRestart verifies the tick loop resumes after a stop
func TestEngineRestart(t *testing.T) {
	e := NewEngine(NewScenario(PresetStarNursery, 3), DefaultLimits)

	e.Start()
	time.Sleep(50 * time.Millisecond)
	e.Stop()

	first := e.Tick()
	if first == 0 {
		t.Fatal("engine never ticked on first run")
	}

	e.Start()
	time.Sleep(50 * time.Millisecond)
	e.Stop()

	if e.Tick() <= first {
		t.Errorf("tick stuck at %d after restart", first)
	}
}

// TestDeterministicReplay verifies two engines with the same scenario
// produce identical states tick for tick
func TestDeterministicReplay(t *testing.T) {
	sc := NewScenario(PresetStarNursery, 1234)
	a := NewEngine(sc, DefaultLimits)
	b := NewEngine(sc, DefaultLimits)

	for i := 0; i < 100; i++ {
		a.Step()
		b.Step()
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	if sa.Tick != sb.Tick {
		t.Fatalf("tick mismatch: %d vs %d", sa.Tick, sb.Tick)
	}
	if len(sa.Bodies) != len(sb.Bodies) {
		t.Fatalf("body count mismatch: %d vs %d", len(sa.Bodies), len(sb.Bodies))
	}
	for i := range sa.Bodies {
		ba, bb := sa.Bodies[i], sb.Bodies[i]
		if ba.ID != bb.ID || ba.X != bb.X || ba.Y != bb.Y || ba.VX != bb.VX || ba.Mass != bb.Mass {
			t.Fatalf("body %d diverged: %+v vs %+v", i, ba, bb)
		}
	}
	if sa.Stats != sb.Stats {
		t.Errorf("stats diverged: %+v vs %+v", sa.Stats, sb.Stats)
	}
}

// TestParallelMatchesSequential verifies the worker pool produces the exact
// accelerations of the sequential solver
func TestParallelMatchesSequential(t *testing.T) {
	sc := NewScenario(PresetStarNursery, 99)

	seq := NewEngine(sc, DefaultLimits)
	par := NewEngine(sc, DefaultLimits)
	seq.settings.Workers = 1
	par.settings.Workers = 8

	for i := 0; i < 20; i++ {
		seq.Step()
		par.Step()
	}

	if len(seq.bodies) != len(par.bodies) {
		t.Fatalf("body count diverged: %d vs %d", len(seq.bodies), len(par.bodies))
	}
	for i := range seq.bodies {
		if seq.bodies[i].Acc != par.bodies[i].Acc {
			t.Fatalf("body %d acceleration diverged: %+v vs %+v",
				i, seq.bodies[i].Acc, par.bodies[i].Acc)
		}
		if seq.bodies[i].Pos != par.bodies[i].Pos {
			t.Fatalf("body %d position diverged", i)
		}
	}
}

// TestEmptyTick verifies a zero-body world ticks without events
func TestEmptyTick(t *testing.T) {
	e := sandboxEngine()
	if e.BodyCount() != 0 {
		t.Fatalf("sandbox not empty: %d bodies", e.BodyCount())
	}

	e.Step()

	snap := e.Snapshot()
	if snap.Tick != 1 {
		t.Errorf("tick = %d, want 1", snap.Tick)
	}
	if len(snap.Events) != 0 {
		t.Errorf("empty world produced %d events", len(snap.Events))
	}
}

// TestReset verifies a reset reproduces the initial layout exactly
func TestReset(t *testing.T) {
	sc := NewScenario(PresetStarNursery, 77)
	e := NewEngine(sc, DefaultLimits)

	initial := make([]Body, len(e.bodies))
	copy(initial, e.bodies)

	for i := 0; i < 50; i++ {
		e.Step()
	}
	e.Reset()

	if e.Tick() != 0 {
		t.Errorf("tick after reset = %d, want 0", e.Tick())
	}
	if len(e.bodies) != len(initial) {
		t.Fatalf("body count after reset: %d, want %d", len(e.bodies), len(initial))
	}
	for i := range initial {
		if e.bodies[i].Pos != initial[i].Pos || e.bodies[i].Mass != initial[i].Mass {
			t.Fatalf("body %d differs after reset", i)
		}
	}
	if e.Stats().Score != 0 {
		t.Error("stats not reset")
	}
	if e.Mission().State != RunInProgress {
		t.Error("mission not reset")
	}
}

// TestUpdateSettingsRejectsInvalid verifies validation failures leave the
// active settings untouched
func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	e := sandboxEngine()
	before := e.Settings()

	bad := before
	bad.Theta = -1
	if err := e.UpdateSettings(bad); err == nil {
		t.Fatal("negative theta accepted")
	}

	bad = before
	bad.DT = 0
	if err := e.UpdateSettings(bad); err == nil {
		t.Fatal("zero dt accepted")
	}

	e.Step()
	if e.Settings() != before {
		t.Error("rejected settings leaked into the engine")
	}
}

// TestUpdateSettingsAppliesAtTickBoundary verifies staged settings apply on
// the next tick, not immediately
func TestUpdateSettingsAppliesAtTickBoundary(t *testing.T) {
	e := sandboxEngine()

	s := e.Settings()
	s.Theta = 0.9
	if err := e.UpdateSettings(s); err != nil {
		t.Fatal(err)
	}
	if e.Settings().Theta == 0.9 {
		t.Error("settings applied before tick boundary")
	}

	e.Step()
	if e.Settings().Theta != 0.9 {
		t.Error("settings not applied after tick")
	}
}

// TestThrustIntent verifies a queued thrust changes the player velocity by
// accel*dt in the thrust direction
func TestThrustIntent(t *testing.T) {
	sc := sandboxScenario()
	sc.SpawnPlayer = true
	sc.PlayerMass = 80
	e := NewEngine(sc, DefaultLimits)

	p := e.player()
	if p == nil {
		t.Fatal("no player")
	}
	before := p.Vel

	if !e.QueueIntent(Intent{Kind: IntentThrust, Thrust: Vec2{X: 1}}) {
		t.Fatal("intent rejected")
	}
	e.Step()

	p = e.player()
	if p == nil {
		t.Fatal("player vanished")
	}
	gained := p.Vel.Sub(before).X
	want := thrustForce / p.Mass * e.Settings().DT
	// The tick also integrates gravity, but a lone player feels none.
	if math.Abs(gained-want) > 1e-9 {
		t.Errorf("velocity gain %g, want %g", gained, want)
	}
}

// TestIntentQueueCap verifies the queue rejects past its limit
func TestIntentQueueCap(t *testing.T) {
	limits := DefaultLimits
	limits.MaxIntentQueue = 2
	e := NewEngine(sandboxScenario(), limits)

	in := Intent{Kind: IntentThrust, Thrust: Vec2{X: 1}}
	if !e.QueueIntent(in) || !e.QueueIntent(in) {
		t.Fatal("queue rejected within capacity")
	}
	if e.QueueIntent(in) {
		t.Error("queue accepted past capacity")
	}
}

// TestBurstIntentSpawns verifies burst intents create bodies and spawn events
func TestBurstIntentSpawns(t *testing.T) {
	e := sandboxEngine()

	e.QueueIntent(Intent{Kind: IntentBurst, Burst: BurstIntent{
		Radius:   100,
		Count:    10,
		BaseMass: 20,
		Speed:    50,
	}})
	e.Step()

	if e.BodyCount() != 10 {
		t.Errorf("expected 10 bodies, got %d", e.BodyCount())
	}
	spawned := 0
	for _, ev := range e.Snapshot().Events {
		if ev.Type == EventSpawned {
			spawned++
		}
	}
	if spawned != 10 {
		t.Errorf("expected 10 spawn events, got %d", spawned)
	}
}

// BenchmarkStep measures a full tick on the calm-belts layout.
func BenchmarkStep(b *testing.B) {
	e := NewEngine(NewScenario(PresetCalmBelts, 1), DefaultLimits)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Step()
	}
}

// TestEnergyDriftBounded verifies leapfrog keeps a two-body orbit's energy
// within a tight band over many periods
func TestEnergyDriftBounded(t *testing.T) {
	e := sandboxEngine()
	e.settings.G = 100
	e.settings.DT = 0.001
	e.settings.Softening = 0.1
	e.settings.Theta = 0.3
	e.settings.AdaptiveTheta = false
	e.settings.AdaptiveSoftening = false
	e.settings.MaxVelocity = 1e9

	// Equal-mass circular binary: relative speed sqrt(G*mtotal/d).
	const m, d = 1000.0, 100.0
	v := 0.5 * math.Sqrt(e.settings.G*2*m/d)
	e.addBody(Body{Pos: Vec2{X: -d / 2}, Vel: Vec2{Y: -v}, Mass: m})
	e.addBody(Body{Pos: Vec2{X: d / 2}, Vel: Vec2{Y: v}, Mass: m})

	e0 := totalEnergy(e.bodies, e.settings.G, e.settings.Softening)
	for i := 0; i < 5000; i++ {
		e.Step()
	}
	e1 := totalEnergy(e.bodies, e.settings.G, e.settings.Softening)

	drift := math.Abs(e1-e0) / math.Abs(e0)
	if drift > 0.02 {
		t.Errorf("energy drift %g exceeds 2%% over 5000 ticks", drift)
	}
}
