package sim

import "math"

// Energy returns the exact total mechanical energy: kinetic plus softened
// pairwise potential. O(n^2), intended for diagnostics and drift tests, not
// for the tick path.
func (e *Engine) Energy() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return totalEnergy(e.bodies, e.settings.G, e.settings.Softening)
}

func totalEnergy(bodies []Body, g, softening float64) float64 {
	soft2 := softening * softening
	var ke, pe float64
	for i := range bodies {
		if !bodies[i].Alive {
			continue
		}
		ke += 0.5 * bodies[i].Mass * bodies[i].Vel.LenSq()
		for j := i + 1; j < len(bodies); j++ {
			if !bodies[j].Alive {
				continue
			}
			d := bodies[j].Pos.Sub(bodies[i].Pos)
			pe -= g * bodies[i].Mass * bodies[j].Mass /
				math.Sqrt(d.LenSq()+soft2)
		}
	}
	return ke + pe
}
