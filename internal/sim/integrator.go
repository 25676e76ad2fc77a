package sim

// Leapfrog kick-drift-kick stepping. The scheme is symmetric and
// time-reversible, which keeps long-term energy error bounded where naive
// Euler integration drifts without bound. A full tick is:
//
//	kickDrift: v += a(old) * dt/2 ; x += v * dt
//	(quadtree rebuild + force solve at the new positions)
//	kick:      v += a(new) * dt/2 , then clamp to the velocity ceiling
//
// Integration never removes bodies; death is the collision resolver's job.

// kickDrift applies the first half-kick with last tick's accelerations and
// drifts positions by the intermediate velocity.
func (e *Engine) kickDrift(dt float64) {
	for i := range e.bodies {
		b := &e.bodies[i]
		b.Vel = b.Vel.Add(b.Acc.Scale(0.5 * dt))
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	}
}

// kick applies the second half-kick with the freshly solved accelerations
// and clamps runaway velocities.
func (e *Engine) kick(dt, maxVel float64) {
	for i := range e.bodies {
		b := &e.bodies[i]
		b.Vel = b.Vel.Add(b.Acc.Scale(0.5 * dt)).ClampLen(maxVel)
	}
}
