// Package spatial provides cache-efficient spatial data structures for the
// simulation: a Barnes-Hut quadtree for approximate gravity queries and a
// hash grid for collision broad-phase.
//
// All structures use preallocated slices with integer indices (not pointers)
// to minimize GC pressure and maximize cache locality. Both are rebuilt from
// scratch every tick; nothing is persisted across ticks.
package spatial

import (
	"math"
)

const (
	// maxDepth bounds tree subdivision. Bodies that still share a cell at
	// this depth (coincident positions) are merged into one mass-weighted
	// leaf instead of splitting forever.
	maxDepth = 48

	// adaptiveDepth is the depth used to normalize DepthFactor.
	adaptiveDepth = 12

	// minHalfExtent pads a degenerate (zero-area) bounding region so
	// subdivision never divides by zero.
	minHalfExtent = 1.0

	noChild = int32(-1)
)

// node is a quadtree cell. A node is empty when it holds no body and has no
// children, a leaf when body >= 0, and internal when child != noChild.
type node struct {
	cx, cy float64 // region center
	half   float64 // region half size

	mass       float64 // aggregate mass (leaf: own mass)
	comX, comY float64 // aggregate center of mass (leaf: own position)

	child int32 // index of first of four consecutive children, or noChild
	body  int32 // body index for leaves, -1 otherwise
}

// Quadtree is a Barnes-Hut tree over point masses. Build inserts every body
// with leaf capacity 1, then aggregates mass and center-of-mass bottom-up.
// The node arena is reused across rebuilds.
type Quadtree struct {
	nodes []node
	stack []int32 // traversal scratch

	count int // bodies inserted by the last Build
}

// NewQuadtree creates a tree with capacity hints for n bodies.
func NewQuadtree(n int) *Quadtree {
	if n < 16 {
		n = 16
	}
	return &Quadtree{
		nodes: make([]node, 0, 4*n),
		stack: make([]int32, 0, 128),
	}
}

// Build rebuilds the tree from parallel position/mass slices. The bounding
// region is the padded square around all points; a degenerate region is
// padded to minHalfExtent.
func (t *Quadtree) Build(xs, ys, masses []float64) {
	t.nodes = t.nodes[:0]
	t.count = len(xs)
	if len(xs) == 0 {
		return
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}
	half := 0.5 * math.Max(maxX-minX, maxY-minY) * 1.2
	if half < minHalfExtent {
		half = minHalfExtent
	}

	t.nodes = append(t.nodes, node{
		cx:    0.5 * (minX + maxX),
		cy:    0.5 * (minY + maxY),
		half:  half,
		child: noChild,
		body:  -1,
	})

	for i := range xs {
		t.insert(0, int32(i), xs[i], ys[i], masses[i], 0)
	}
	t.aggregate(0)
}

// Count returns the number of bodies inserted by the last Build.
func (t *Quadtree) Count() int { return t.count }

// Bounds returns the root region (center and half size) of the last Build.
// The zero tree reports a zero region.
func (t *Quadtree) Bounds() (cx, cy, half float64) {
	if len(t.nodes) == 0 {
		return 0, 0, 0
	}
	r := &t.nodes[0]
	return r.cx, r.cy, r.half
}

func (t *Quadtree) insert(ni, bi int32, x, y, m float64, depth int) {
	n := &t.nodes[ni]

	// Empty: claim as leaf.
	if n.body < 0 && n.child == noChild {
		n.body = bi
		n.mass = m
		n.comX, n.comY = x, y
		return
	}

	// Leaf: merge when subdivision bottoms out, otherwise split and
	// reinsert both occupants.
	if n.body >= 0 {
		if depth >= maxDepth {
			total := n.mass + m
			n.comX = (n.comX*n.mass + x*m) / total
			n.comY = (n.comY*n.mass + y*m) / total
			n.mass = total
			return
		}
		ox, oy, om, ob := n.comX, n.comY, n.mass, n.body
		n.body = -1
		n.mass = 0
		t.split(ni)
		n = &t.nodes[ni] // split may have grown the arena

		t.insert(n.child+t.childIndex(ni, ox, oy), ob, ox, oy, om, depth+1)
		n = &t.nodes[ni]
		t.insert(n.child+t.childIndex(ni, x, y), bi, x, y, m, depth+1)
		return
	}

	// Internal: descend.
	t.insert(n.child+t.childIndex(ni, x, y), bi, x, y, m, depth+1)
}

// split allocates the four children of node ni in NW, NE, SW, SE order.
func (t *Quadtree) split(ni int32) {
	n := &t.nodes[ni]
	hs := n.half * 0.5
	cx, cy := n.cx, n.cy
	first := int32(len(t.nodes))
	t.nodes = append(t.nodes,
		node{cx: cx - hs, cy: cy + hs, half: hs, child: noChild, body: -1},
		node{cx: cx + hs, cy: cy + hs, half: hs, child: noChild, body: -1},
		node{cx: cx - hs, cy: cy - hs, half: hs, child: noChild, body: -1},
		node{cx: cx + hs, cy: cy - hs, half: hs, child: noChild, body: -1},
	)
	t.nodes[ni].child = first
}

// childIndex maps a position to one of the four child slots of node ni.
func (t *Quadtree) childIndex(ni int32, x, y float64) int32 {
	n := &t.nodes[ni]
	idx := int32(0)
	if x > n.cx {
		idx |= 1
	}
	if y <= n.cy {
		idx |= 2
	}
	return idx
}

// aggregate computes internal-node mass and center-of-mass bottom-up.
func (t *Quadtree) aggregate(ni int32) (mass, comX, comY float64) {
	n := &t.nodes[ni]
	if n.child == noChild {
		return n.mass, n.comX, n.comY
	}
	var total, wx, wy float64
	for c := int32(0); c < 4; c++ {
		m, x, y := t.aggregate(n.child + c)
		total += m
		wx += x * m
		wy += y * m
	}
	n = &t.nodes[ni]
	n.mass = total
	if total > 0 {
		n.comX = wx / total
		n.comY = wy / total
	} else {
		n.comX, n.comY = 0, 0
	}
	return n.mass, n.comX, n.comY
}

// Accel returns the gravitational acceleration at (px, py) using the
// Barnes-Hut acceptance criterion: a node of width s at distance d is
// approximated as a point mass when s/d < theta, otherwise its children are
// visited. Contributions use the softened inverse-square law
// a += g*m*r / (|r|^2 + soft2)^1.5. A body querying its own position
// contributes nothing (zero separation vector).
//
// Accel mutates only the tree's scratch stack, so concurrent calls must pass
// their own scratch via AccelScratch. Accel is the single-caller convenience
// form.
func (t *Quadtree) Accel(px, py, g, theta, soft2 float64) (ax, ay float64) {
	t.stack = t.stack[:0]
	ax, ay, t.stack = t.accel(px, py, g, theta, soft2, t.stack)
	return ax, ay
}

// AccelScratch is Accel with caller-owned traversal scratch, for use by
// parallel force workers. The returned slice should be passed back in on the
// next call to avoid reallocating.
func (t *Quadtree) AccelScratch(px, py, g, theta, soft2 float64, scratch []int32) (ax, ay float64, out []int32) {
	return t.accel(px, py, g, theta, soft2, scratch[:0])
}

func (t *Quadtree) accel(px, py, g, theta, soft2 float64, stack []int32) (ax, ay float64, out []int32) {
	if len(t.nodes) == 0 {
		return 0, 0, stack
	}
	theta2 := theta * theta

	stack = append(stack, 0)
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[ni]
		if n.mass == 0 {
			continue
		}

		rx := n.comX - px
		ry := n.comY - py
		d2 := rx*rx + ry*ry

		if n.child != noChild {
			s := n.half * 2
			// Approximate far nodes as point masses; descend into
			// near ones. Zero distance forces descent.
			if d2 == 0 || s*s >= theta2*d2 {
				stack = append(stack, n.child, n.child+1, n.child+2, n.child+3)
				continue
			}
		}

		dist2 := d2 + soft2
		if dist2 == 0 {
			continue // self-interaction with zero softening
		}
		inv := 1.0 / (dist2 * math.Sqrt(dist2))
		ax += g * n.mass * rx * inv
		ay += g * n.mass * ry * inv
	}
	return ax, ay, stack
}

// DepthFactor estimates local crowding at (px, py) as the normalized depth of
// the deepest internal node containing the point, in [0, 1]. Dense regions
// sit deep in the tree and report values near 1. Used for adaptive theta and
// softening.
func (t *Quadtree) DepthFactor(px, py float64) float64 {
	if len(t.nodes) == 0 {
		return 0
	}
	ni := int32(0)
	depth := 0
	for depth < adaptiveDepth {
		n := &t.nodes[ni]
		if n.child == noChild {
			break
		}
		if px < n.cx-n.half || px > n.cx+n.half || py < n.cy-n.half || py > n.cy+n.half {
			break
		}
		ni = n.child + t.childIndex(ni, px, py)
		depth++
	}
	f := float64(depth) / float64(adaptiveDepth)
	if f > 1 {
		f = 1
	}
	return f
}
