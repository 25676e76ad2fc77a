package sim

import (
	"math"
	"sync"
)

// solveForces computes every body's acceleration from the freshly built
// quadtree. Results are scatter-written to each body's Acc slot, never
// through a shared accumulator, so the parallel and sequential paths are
// bit-for-bit identical: each body's traversal reads the same immutable tree
// and touches only its own output.
//
// Callers hold the engine lock; workers only read the tree and write
// disjoint index ranges.
func (e *Engine) solveForces() {
	n := len(e.bodies)
	if n == 0 {
		return
	}

	workers := e.settings.Workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		e.solveRange(0, n, e.forceScratch[:0])
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			e.solveRange(lo, hi, make([]int32, 0, 128))
		}(lo, hi)
	}
	wg.Wait()
}

// solveRange evaluates bodies [lo, hi) against the tree using caller-owned
// traversal scratch.
func (e *Engine) solveRange(lo, hi int, scratch []int32) {
	s := e.settings
	for i := lo; i < hi; i++ {
		b := &e.bodies[i]

		theta := s.Theta
		soft := s.Softening
		if s.AdaptiveTheta || s.AdaptiveSoftening {
			// Crowded regions get a tighter theta (accuracy) and
			// more softening (stability); sparse regions the
			// opposite.
			f := e.tree.DepthFactor(b.Pos.X, b.Pos.Y)
			if s.AdaptiveTheta {
				theta = s.ThetaRange.Max - f*(s.ThetaRange.Max-s.ThetaRange.Min)
			}
			if s.AdaptiveSoftening {
				soft = s.SofteningRange.lerp(f)
			}
		}

		var ax, ay float64
		ax, ay, scratch = e.tree.AccelScratch(b.Pos.X, b.Pos.Y, s.G, theta, soft*soft, scratch)
		b.Acc = Vec2{X: ax, Y: ay}
	}
}

// directForces is the exact O(n^2) pairwise solver. It exists as the
// reference the Barnes-Hut output converges to as theta approaches zero, and
// for tiny-n diagnostics.
func directForces(bodies []Body, g, softening float64) []Vec2 {
	soft2 := softening * softening
	acc := make([]Vec2, len(bodies))
	for i := range bodies {
		var ax, ay float64
		for j := range bodies {
			if i == j {
				continue
			}
			rx := bodies[j].Pos.X - bodies[i].Pos.X
			ry := bodies[j].Pos.Y - bodies[i].Pos.Y
			dist2 := rx*rx + ry*ry + soft2
			if dist2 == 0 {
				continue
			}
			inv := 1.0 / (dist2 * math.Sqrt(dist2))
			ax += g * bodies[j].Mass * rx * inv
			ay += g * bodies[j].Mass * ry * inv
		}
		acc[i] = Vec2{X: ax, Y: ay}
	}
	return acc
}
