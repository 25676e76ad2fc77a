package sim

import "math"

// Player launch parameters shared by every preset. The player starts on a
// near-circular prograde orbit just outside the innermost belt.
const (
	playerMass   = 80.0
	playerStartX = 340.0
	playerStartV = 130.0
)

// Hazard archetypes. Masses and standoff distances come from the scenario
// catalog, not from settings, so replays stay stable across tuning changes.
const (
	rogueStarMass     = 1e5
	rogueStarDistance = 2000.0
	rogueStarSpeed    = 300.0

	microBHMass     = 1.5e6
	microBHDistance = 1500.0

	debrisStormDistance = 3000.0
	debrisStormRadius   = 200.0
	debrisStormCount    = 100
	debrisStormBaseMass = 20.0
	debrisStormSpeed    = 400.0
)

// addBody registers a body with the next monotonic ID. Returns false when
// the registry cap is reached; callers skip silently, the cap is a soft
// back-pressure valve rather than an error condition.
func (e *Engine) addBody(b Body) bool {
	if len(e.bodies) >= e.limits.MaxBodies {
		return false
	}
	b.ID = e.nextID
	e.nextID++
	b.Alive = true
	b.Class = ClassForMass(b.Mass)
	e.bodies = append(e.bodies, b)
	return true
}

// spawnInitial lays out the scenario's opening state. Initial placement is
// part of the scenario definition, so it emits no spawn events: a replay log
// begins at tick zero with the layout already in place.
func (e *Engine) spawnInitial() {
	sc := &e.scenario
	switch sc.Preset {
	case PresetBinaryMayhem:
		e.spawnBinary(sc)
	case PresetStarNursery:
		e.spawnCluster(sc)
	default:
		e.spawnCentralBelts(sc)
	}

	if sc.SpawnPlayer {
		mass := sc.PlayerMass
		if mass <= 0 {
			mass = playerMass
		}
		b := Body{
			Pos:    Vec2{X: playerStartX},
			Vel:    Vec2{Y: playerStartV},
			Mass:   mass,
			Player: true,
		}
		if e.addBody(b) {
			e.playerID = e.bodies[len(e.bodies)-1].ID
		}
	}
}

// spawnCentralBelts builds a central star surrounded by concentric asteroid
// belts on near-circular orbits.
func (e *Engine) spawnCentralBelts(sc *Scenario) {
	if sc.CentralMass > 0 {
		e.addBody(Body{Mass: sc.CentralMass})
	}

	for _, radius := range sc.BeltRadii {
		for i := 0; i < sc.BeltCount; i++ {
			angle := e.rng.Float64() * 2 * math.Pi
			r := radius + (e.rng.Float64()-0.5)*40
			pos := fromAngle(angle).Scale(r)
			// Tangential speed scales with sqrt(r) so inner and
			// outer belts stay roughly bound under the default G.
			vel := pos.Perp().Normalized().Scale(math.Sqrt(r) * 3.2)
			mass := 6 + e.rng.Float64()*54
			e.addBody(Body{Pos: pos, Vel: vel, Mass: mass})
		}
	}
}

// spawnBinary builds two stars on a mutual circular orbit with a debris
// field around them.
func (e *Engine) spawnBinary(sc *Scenario) {
	m1, m2 := 4e5, 2e5
	r := sc.BinarySplit
	if r <= 0 {
		r = 300
	}
	g := e.settings.G

	v1 := math.Sqrt(g * m2 / (2 * r))
	v2 := math.Sqrt(g * m1 / (2 * r))
	e.addBody(Body{Pos: Vec2{X: -r}, Vel: Vec2{Y: -v1}, Mass: m1})
	e.addBody(Body{Pos: Vec2{X: r}, Vel: Vec2{Y: v2}, Mass: m2})

	for _, radius := range sc.BeltRadii {
		for i := 0; i < sc.BeltCount; i++ {
			angle := e.rng.Float64() * 2 * math.Pi
			rr := radius + (e.rng.Float64()-0.5)*40
			pos := fromAngle(angle).Scale(rr)
			vel := pos.Perp().Normalized().Scale(math.Sqrt(rr) * 3.2)
			mass := 6 + e.rng.Float64()*54
			e.addBody(Body{Pos: pos, Vel: vel, Mass: mass})
		}
	}
}

// spawnCluster builds a loose box of heavy bodies that collapses under its
// own gravity.
func (e *Engine) spawnCluster(sc *Scenario) {
	count := sc.ClusterCount
	if count <= 0 {
		count = 50
	}
	for i := 0; i < count; i++ {
		pos := Vec2{
			X: (e.rng.Float64()*2 - 1) * 1000,
			Y: (e.rng.Float64()*2 - 1) * 1000,
		}
		mass := 1000 + e.rng.Float64()*49000
		e.addBody(Body{Pos: pos, Mass: mass})
	}
}

// stepHazards injects scenario hazards on the scenario's interval. The cap
// is checked before each draw, so a skipped attempt consumes no randomness.
func (e *Engine) stepHazards() {
	sc := &e.scenario
	if sc.HazardInterval <= 0 {
		return
	}
	intervalTicks := int(sc.HazardInterval / e.settings.DT)
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	if e.tick == 0 || e.tick%uint64(intervalTicks) != 0 {
		return
	}
	total := sc.HazardWeights[0] + sc.HazardWeights[1] + sc.HazardWeights[2]
	if total <= 0 {
		return
	}
	attempts := sc.HazardAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		// Cap check precedes the draw: a skipped attempt consumes no
		// randomness.
		if e.hazardCount() >= e.settings.MaxHazards {
			return
		}
		draw := e.rng.Float64() * total
		var kind HazardKind
		switch {
		case draw < sc.HazardWeights[0]:
			kind = HazardRogueStar
		case draw < sc.HazardWeights[0]+sc.HazardWeights[1]:
			kind = HazardMicroBlackHole
		default:
			kind = HazardDebrisStorm
		}
		e.spawnHazard(kind)
	}
}

func (e *Engine) hazardCount() int {
	n := 0
	for i := range e.bodies {
		if e.bodies[i].Alive && e.bodies[i].Hazard {
			n++
		}
	}
	return n
}

// spawnHazard places a hazard relative to the player (or the origin when no
// player is alive) and emits a spawn event per hazard body. A debris storm
// counts as a single hazard: only its leading fragment carries the flag, so
// one storm holds one slot against MaxHazards.
func (e *Engine) spawnHazard(kind HazardKind) {
	anchor := Vec2{}
	if p := e.player(); p != nil {
		anchor = p.Pos
	}
	angle := e.rng.Float64() * 2 * math.Pi

	switch kind {
	case HazardRogueStar:
		pos := anchor.Add(fromAngle(angle).Scale(rogueStarDistance))
		vel := anchor.Sub(pos).Normalized().Scale(rogueStarSpeed)
		b := Body{Pos: pos, Vel: vel, Mass: rogueStarMass, Hazard: true}
		if e.addBody(b) {
			last := &e.bodies[len(e.bodies)-1]
			e.emit(Event{Type: EventSpawned, BodyID: last.ID, Mass: last.Mass, Class: last.Class})
		}

	case HazardMicroBlackHole:
		pos := anchor.Add(fromAngle(angle).Scale(microBHDistance))
		b := Body{Pos: pos, Mass: microBHMass, Hazard: true}
		if e.addBody(b) {
			last := &e.bodies[len(e.bodies)-1]
			e.emit(Event{Type: EventSpawned, BodyID: last.ID, Mass: last.Mass, Class: last.Class})
		}

	case HazardDebrisStorm:
		center := anchor.Add(fromAngle(angle).Scale(debrisStormDistance))
		e.spawnBurst(BurstIntent{
			Center:   center,
			Radius:   debrisStormRadius,
			Count:    debrisStormCount,
			BaseMass: debrisStormBaseMass,
			Speed:    debrisStormSpeed,
		}, true)
	}
}

// spawnBurst scatters Count bodies uniformly over a disc, each on a
// tangential trajectory with a small radial jitter. Used both for debris
// storm hazards and for player burst intents. When hazard is set, only the
// first body is flagged: the burst occupies one hazard slot as a unit.
func (e *Engine) spawnBurst(b BurstIntent, hazard bool) {
	count := b.Count
	if count > e.limits.MaxBurstCount {
		count = e.limits.MaxBurstCount
	}
	for i := 0; i < count; i++ {
		angle := e.rng.Float64() * 2 * math.Pi
		r := e.rng.Float64() * b.Radius
		pos := b.Center.Add(fromAngle(angle).Scale(r))
		jitter := (e.rng.Float64() - 0.5) * 40
		vel := fromAngle(angle).Perp().Scale(b.Speed).Add(fromAngle(angle).Scale(jitter))
		mass := b.BaseMass * (0.5 + e.rng.Float64())

		body := Body{Pos: pos, Vel: vel, Mass: mass, Hazard: hazard && i == 0}
		if !e.addBody(body) {
			return
		}
		last := &e.bodies[len(e.bodies)-1]
		e.emit(Event{Type: EventSpawned, BodyID: last.ID, Mass: last.Mass, Class: last.Class})
	}
}
