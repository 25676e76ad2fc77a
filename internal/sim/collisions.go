package sim

import (
	"math"
	"sort"
)

// kePairTolerance is the slack allowed before an elastic resolution is
// treated as energy-gaining and clamped to a fully inelastic bounce.
const kePairTolerance = 1e-9

// pair is an overlapping body pair by registry index, normalized a < b.
// Registry order is ID order (IDs are monotonic and compaction preserves
// order), so ascending (a, b) is ascending (idA, idB).
type pair struct {
	a, b int32
}

// detectPairs rebuilds the hash grid and collects every overlapping alive
// pair, sorted ascending by (a, b). The sorted order is the documented
// resolution order: deterministic regardless of how candidates were
// discovered.
func (e *Engine) detectPairs() []pair {
	n := len(e.bodies)
	e.pairs = e.pairs[:0]
	if n < 2 {
		return e.pairs
	}

	// Cell size tracks the mean body diameter. The 3x3 search reaches
	// 1.5 cells out from a body's center, so a pair whose radius sum
	// spans more than that (a star against far smaller bodies) is only
	// detected once the pair closes further.
	var totalRadius float64
	alive := 0
	for i := range e.bodies {
		if e.bodies[i].Alive {
			totalRadius += e.bodies[i].Radius()
			alive++
		}
	}
	if alive < 2 {
		return e.pairs
	}
	e.grid.Reset(2 * totalRadius / float64(alive))

	for i := range e.bodies {
		if e.bodies[i].Alive {
			e.grid.Insert(int32(i), e.bodies[i].Pos.X, e.bodies[i].Pos.Y)
		}
	}

	for i := range e.bodies {
		a := &e.bodies[i]
		if !a.Alive {
			continue
		}
		ra := a.Radius()
		e.candidates = e.grid.AppendNeighbors(e.candidates[:0], a.Pos.X, a.Pos.Y)
		for _, j := range e.candidates {
			if int(j) <= i {
				continue // each pair once, from its lower index
			}
			b := &e.bodies[j]
			rsum := ra + b.Radius()
			if b.Pos.Sub(a.Pos).LenSq() <= rsum*rsum {
				e.pairs = append(e.pairs, pair{a: int32(i), b: j})
			}
		}
	}

	sort.Slice(e.pairs, func(x, y int) bool {
		if e.pairs[x].a != e.pairs[y].a {
			return e.pairs[x].a < e.pairs[y].a
		}
		return e.pairs[x].b < e.pairs[y].b
	})
	return e.pairs
}

// resolveCollisions detects and resolves overlaps after integration.
// Resolution is strictly sequential in sorted pair order: pairs sharing a
// body see the partially updated state left by earlier pairs, which is the
// deterministic tie-break for simultaneous multi-body contacts.
func (e *Engine) resolveCollisions() {
	pairs := e.detectPairs()
	if len(pairs) == 0 {
		return
	}

	switch e.settings.Mode {
	case CollisionElastic:
		for _, p := range pairs {
			e.resolveElastic(p)
		}
	default:
		for _, p := range pairs {
			e.resolveAbsorb(p)
		}
	}
}

// resolveElastic bounces an overlapping pair with a 1D impulse along the
// collision normal, conserving momentum and scaling the normal separation
// speed by the restitution coefficient. Pairs already separating are left
// alone; a resolution that would somehow add kinetic energy is re-clamped to
// a fully inelastic one.
func (e *Engine) resolveElastic(p pair) {
	a := &e.bodies[p.a]
	b := &e.bodies[p.b]
	if !a.Alive || !b.Alive {
		return
	}

	delta := b.Pos.Sub(a.Pos)
	dist2 := delta.LenSq()
	rsum := a.Radius() + b.Radius()
	if dist2 > rsum*rsum || dist2 == 0 {
		return
	}
	dist := math.Sqrt(dist2)
	normal := delta.Scale(1 / dist)

	van := a.Vel.Dot(normal)
	vbn := b.Vel.Dot(normal)
	if van-vbn <= 0 {
		return // already separating along the normal
	}

	tangent := normal.Perp()
	vat := a.Vel.Dot(tangent)
	vbt := b.Vel.Dot(tangent)
	ma, mb := a.Mass, b.Mass

	resolve := func(rest float64) (float64, float64) {
		vanNew := (rest*mb*(vbn-van) + ma*van + mb*vbn) / (ma + mb)
		vbnNew := (rest*ma*(van-vbn) + ma*van + mb*vbn) / (ma + mb)
		return vanNew, vbnNew
	}

	vanNew, vbnNew := resolve(e.settings.Restitution)
	keBefore := 0.5 * (ma*van*van + mb*vbn*vbn)
	keAfter := 0.5 * (ma*vanNew*vanNew + mb*vbnNew*vbnNew)
	if keAfter > keBefore+kePairTolerance {
		vanNew, vbnNew = resolve(0)
	}

	a.Vel = normal.Scale(vanNew).Add(tangent.Scale(vat))
	b.Vel = normal.Scale(vbnNew).Add(tangent.Scale(vbt))

	// Split the overlap evenly so the pair does not re-collide next tick.
	overlap := (rsum - dist) * 0.5
	a.Pos = a.Pos.Sub(normal.Scale(overlap))
	b.Pos = b.Pos.Add(normal.Scale(overlap))

	e.emit(Event{
		Type:    EventCollided,
		BodyID:  a.ID,
		OtherID: b.ID,
		Player:  a.Player || b.Player,
	})
}

// resolveAbsorb merges an overlapping pair: the winner gains exactly the
// loser's mass (momentum-conserving velocity), the loser dies and is
// compacted out at end of tick. A black hole always beats a non black hole;
// otherwise the heavier body wins, with the lower ID as the equal-mass
// tie-break.
func (e *Engine) resolveAbsorb(p pair) {
	a := &e.bodies[p.a]
	b := &e.bodies[p.b]
	if !a.Alive || !b.Alive {
		return
	}

	delta := b.Pos.Sub(a.Pos)
	rsum := a.Radius() + b.Radius()
	if delta.LenSq() > rsum*rsum {
		return
	}

	aBH := a.Class == ClassBlackHole
	bBH := b.Class == ClassBlackHole
	aWins := a.Mass >= b.Mass // equal mass: lower ID (a) wins
	if aBH != bBH {
		aWins = aBH
	}
	winner, loser := a, b
	if !aWins {
		winner, loser = b, a
	}

	total := winner.Mass + loser.Mass
	newVel := winner.Vel.Scale(winner.Mass).Add(loser.Vel.Scale(loser.Mass)).Scale(1 / total)

	loserMass := loser.Mass
	loserSpeed := loser.Vel.Len()
	loserClass := loser.Class

	prevClass := winner.Class
	winner.Mass = total
	winner.Vel = newVel
	winner.Class = ClassForMass(winner.Mass)
	loser.Alive = false

	e.emit(Event{
		Type:    EventAbsorbed,
		BodyID:  winner.ID,
		OtherID: loser.ID,
		Mass:    loserMass,
		Speed:   loserSpeed,
		Class:   loserClass,
		Player:  winner.Player,
	})
	e.emit(Event{
		Type:   EventDied,
		BodyID: loser.ID,
		Player: loser.Player,
	})

	if winner.Class != prevClass {
		e.emit(Event{
			Type:   EventEvolved,
			BodyID: winner.ID,
			Class:  winner.Class,
			Player: winner.Player,
		})
	}
}

// compactDead removes dead bodies from the registry in place, preserving
// order so that registry index order stays ID order.
func (e *Engine) compactDead() {
	n := 0
	for i := range e.bodies {
		if e.bodies[i].Alive {
			e.bodies[n] = e.bodies[i]
			n++
		}
	}
	e.bodies = e.bodies[:n]
}
