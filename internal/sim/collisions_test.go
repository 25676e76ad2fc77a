package sim

import (
	"math"
	"testing"
)

func momentum(bodies []Body) Vec2 {
	var p Vec2
	for i := range bodies {
		if bodies[i].Alive {
			p = p.Add(bodies[i].Vel.Scale(bodies[i].Mass))
		}
	}
	return p
}

func kinetic(bodies []Body) float64 {
	var ke float64
	for i := range bodies {
		if bodies[i].Alive {
			ke += 0.5 * bodies[i].Mass * bodies[i].Vel.LenSq()
		}
	}
	return ke
}

// TestAbsorbConservesMass verifies the winner gains exactly the loser's mass
// and momentum, and the loser is removed
func TestAbsorbConservesMass(t *testing.T) {
	e := sandboxEngine()
	e.settings.Mode = CollisionAbsorb

	e.addBody(Body{Pos: Vec2{X: 0}, Vel: Vec2{X: 10}, Mass: 600})
	e.addBody(Body{Pos: Vec2{X: 3}, Vel: Vec2{X: -5}, Mass: 100})

	massBefore := e.bodies[0].Mass + e.bodies[1].Mass
	pBefore := momentum(e.bodies)

	e.resolveCollisions()
	e.compactDead()

	if len(e.bodies) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(e.bodies))
	}
	w := e.bodies[0]
	if w.Mass != massBefore {
		t.Errorf("mass not conserved: %g, want %g", w.Mass, massBefore)
	}
	pAfter := w.Vel.Scale(w.Mass)
	if math.Abs(pAfter.X-pBefore.X) > 1e-9 || math.Abs(pAfter.Y-pBefore.Y) > 1e-9 {
		t.Errorf("momentum not conserved: %+v, want %+v", pAfter, pBefore)
	}
}

// TestAbsorbHeavierWins verifies the mass rule and the equal-mass ID
// tie-break
func TestAbsorbHeavierWins(t *testing.T) {
	t.Run("heavier wins", func(t *testing.T) {
		e := sandboxEngine()
		e.addBody(Body{Pos: Vec2{X: 0}, Mass: 100})
		e.addBody(Body{Pos: Vec2{X: 2}, Mass: 900})

		heavyID := e.bodies[1].ID
		e.resolveCollisions()
		e.compactDead()

		if len(e.bodies) != 1 || e.bodies[0].ID != heavyID {
			t.Error("heavier body did not win")
		}
	})

	t.Run("equal mass lower id wins", func(t *testing.T) {
		e := sandboxEngine()
		e.addBody(Body{Pos: Vec2{X: 0}, Mass: 500})
		e.addBody(Body{Pos: Vec2{X: 2}, Mass: 500})

		lowID := e.bodies[0].ID
		e.resolveCollisions()
		e.compactDead()

		if len(e.bodies) != 1 || e.bodies[0].ID != lowID {
			t.Error("equal-mass tie not broken by lower id")
		}
	})

	t.Run("black hole absorbs star", func(t *testing.T) {
		e := sandboxEngine()
		e.addBody(Body{Pos: Vec2{X: 0}, Mass: 1.2e6}) // black hole
		e.addBody(Body{Pos: Vec2{X: 1}, Mass: 9.9e5}) // star

		bhID := e.bodies[0].ID
		e.resolveCollisions()
		e.compactDead()

		if len(e.bodies) != 1 || e.bodies[0].ID != bhID {
			t.Error("black hole did not absorb the star")
		}
	})
}

// TestAbsorbEmitsEvents verifies absorbed/died events carry the loser's
// stats and the winner's player flag
func TestAbsorbEmitsEvents(t *testing.T) {
	e := sandboxEngine()

	e.addBody(Body{Pos: Vec2{X: 0}, Vel: Vec2{}, Mass: 600, Player: true})
	e.playerID = e.bodies[0].ID
	e.addBody(Body{Pos: Vec2{X: 2}, Vel: Vec2{X: 3, Y: 4}, Mass: 100})
	loserID := e.bodies[1].ID

	e.resolveCollisions()

	var absorbed, died *Event
	for i := range e.tickEvents {
		switch e.tickEvents[i].Type {
		case EventAbsorbed:
			absorbed = &e.tickEvents[i]
		case EventDied:
			died = &e.tickEvents[i]
		}
	}
	if absorbed == nil || died == nil {
		t.Fatal("missing absorb or died event")
	}
	if !absorbed.Player {
		t.Error("absorb event not flagged as player")
	}
	if absorbed.Mass != 100 {
		t.Errorf("absorb event mass %g, want 100", absorbed.Mass)
	}
	if absorbed.Speed != 5 {
		t.Errorf("absorb event speed %g, want 5", absorbed.Speed)
	}
	if died.BodyID != loserID {
		t.Error("died event does not name the loser")
	}
}

// TestAbsorbEvolution verifies crossing a class threshold emits an evolved
// event
func TestAbsorbEvolution(t *testing.T) {
	e := sandboxEngine()

	e.addBody(Body{Pos: Vec2{X: 0}, Mass: 450}) // asteroid, close to planet
	e.addBody(Body{Pos: Vec2{X: 1}, Mass: 100})

	e.resolveCollisions()

	var evolved *Event
	for i := range e.tickEvents {
		if e.tickEvents[i].Type == EventEvolved {
			evolved = &e.tickEvents[i]
		}
	}
	if evolved == nil {
		t.Fatal("no evolved event after threshold crossing")
	}
	if evolved.Class != ClassPlanet {
		t.Errorf("evolved class %v, want planet", evolved.Class)
	}
}

// TestElasticConservation verifies momentum conservation and the no-gain
// energy guard for an elastic bounce
func TestElasticConservation(t *testing.T) {
	e := sandboxEngine()
	e.settings.Mode = CollisionElastic
	e.settings.Restitution = 0.9

	e.addBody(Body{Pos: Vec2{X: 0}, Vel: Vec2{X: 50}, Mass: 300})
	e.addBody(Body{Pos: Vec2{X: 5}, Vel: Vec2{X: -30}, Mass: 700})

	pBefore := momentum(e.bodies)
	keBefore := kinetic(e.bodies)

	e.resolveCollisions()

	pAfter := momentum(e.bodies)
	if math.Abs(pAfter.X-pBefore.X) > 1e-9 || math.Abs(pAfter.Y-pBefore.Y) > 1e-9 {
		t.Errorf("momentum not conserved: %+v, want %+v", pAfter, pBefore)
	}
	if kinetic(e.bodies) > keBefore+1e-9 {
		t.Error("elastic resolution gained kinetic energy")
	}
	if len(e.bodies) != 2 || !e.bodies[0].Alive || !e.bodies[1].Alive {
		t.Error("elastic mode must not remove bodies")
	}

	// Velocities must now separate along the normal.
	if e.bodies[0].Vel.X >= e.bodies[1].Vel.X {
		t.Error("bodies still approaching after bounce")
	}
}

// TestElasticSeparatingPairUntouched verifies pairs moving apart are not
// re-resolved even while still overlapping
func TestElasticSeparatingPairUntouched(t *testing.T) {
	e := sandboxEngine()
	e.settings.Mode = CollisionElastic

	e.addBody(Body{Pos: Vec2{X: 0}, Vel: Vec2{X: -10}, Mass: 700})
	e.addBody(Body{Pos: Vec2{X: 5}, Vel: Vec2{X: 10}, Mass: 700})
	v0, v1 := e.bodies[0].Vel, e.bodies[1].Vel

	e.resolveCollisions()

	if e.bodies[0].Vel != v0 || e.bodies[1].Vel != v1 {
		t.Error("separating pair was modified")
	}
}

// TestPairOrderDeterministic verifies three mutually overlapping bodies
// resolve in ascending id order regardless of grid iteration order
func TestPairOrderDeterministic(t *testing.T) {
	run := func() []Event {
		e := sandboxEngine()
		e.addBody(Body{Pos: Vec2{X: 0}, Mass: 900})
		e.addBody(Body{Pos: Vec2{X: 1}, Mass: 500})
		e.addBody(Body{Pos: Vec2{X: 2}, Mass: 100})
		e.resolveCollisions()
		e.compactDead()
		out := make([]Event, len(e.tickEvents))
		copy(out, e.tickEvents)
		return out
	}

	first := run()
	for i := 0; i < 10; i++ {
		again := run()
		if len(again) != len(first) {
			t.Fatalf("event count varies: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if again[j].Type != first[j].Type || again[j].BodyID != first[j].BodyID ||
				again[j].OtherID != first[j].OtherID {
				t.Fatalf("event %d varies across runs", j)
			}
		}
	}
}

// TestHeadOnAbsorb verifies two equal masses on a collision course merge
// into exactly one survivor carrying the combined mass
func TestHeadOnAbsorb(t *testing.T) {
	sc := sandboxScenario()
	sc.Seed = 42
	e := NewEngine(sc, DefaultLimits)
	e.settings.Mode = CollisionAbsorb

	e.addBody(Body{Pos: Vec2{X: -50}, Vel: Vec2{X: 40}, Mass: 300})
	e.addBody(Body{Pos: Vec2{X: 50}, Vel: Vec2{X: -40}, Mass: 300})
	firstID := e.bodies[0].ID

	for i := 0; i < 2000 && e.BodyCount() > 1; i++ {
		e.Step()
	}

	if e.BodyCount() != 1 {
		t.Fatalf("expected 1 survivor, got %d", e.BodyCount())
	}
	w := e.bodies[0]
	if w.Mass != 600 {
		t.Errorf("survivor mass %g, want 600", w.Mass)
	}
	if !w.Alive {
		t.Error("survivor not alive")
	}
	if w.ID != firstID {
		t.Error("equal-mass head-on merge did not keep the lower id")
	}
}

// TestPlayerDeathLosesMission verifies the engine reports a loss on the tick
// the player is absorbed
func TestPlayerDeathLosesMission(t *testing.T) {
	sc := sandboxScenario()
	sc.Mission = MissionSpec{Objective: ObjectiveSurvive, Target: 1e9}
	e := NewEngine(sc, DefaultLimits)

	e.addBody(Body{Pos: Vec2{X: 0}, Mass: 80, Player: true})
	e.playerID = e.bodies[0].ID
	e.addBody(Body{Pos: Vec2{X: 1}, Mass: 5000})

	e.Step()

	if e.Mission().State != RunLost {
		t.Errorf("mission state %s, want lost", e.Mission().State)
	}
	lost := false
	for _, ev := range e.Snapshot().Events {
		if ev.Type == EventLost {
			lost = true
		}
	}
	if !lost {
		t.Error("no lost event emitted")
	}
}
