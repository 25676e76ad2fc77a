package spatial

import (
	"math"
	"math/rand"
	"testing"
)

// directAccel is the exact pairwise sum the tree output must converge to as
// theta shrinks.
func directAccel(i int, xs, ys, ms []float64, g, soft2 float64) (float64, float64) {
	var ax, ay float64
	for j := range xs {
		if j == i {
			continue
		}
		rx := xs[j] - xs[i]
		ry := ys[j] - ys[i]
		d2 := rx*rx + ry*ry + soft2
		inv := 1.0 / (d2 * math.Sqrt(d2))
		ax += g * ms[j] * rx * inv
		ay += g * ms[j] * ry * inv
	}
	return ax, ay
}

// TestBuildEmpty verifies an empty build leaves a queryable tree
func TestBuildEmpty(t *testing.T) {
	tree := NewQuadtree(16)
	tree.Build(nil, nil, nil)

	if tree.Count() != 0 {
		t.Errorf("expected count 0, got %d", tree.Count())
	}
	ax, ay, _ := tree.AccelScratch(0, 0, 100, 0.5, 1, nil)
	if ax != 0 || ay != 0 {
		t.Errorf("empty tree should produce zero accel, got (%g, %g)", ax, ay)
	}
}

// TestSingleBody verifies a lone body feels no force from itself
func TestSingleBody(t *testing.T) {
	tree := NewQuadtree(16)
	tree.Build([]float64{5}, []float64{-3}, []float64{1000})

	ax, ay, _ := tree.AccelScratch(5, -3, 100, 0.5, 1, nil)
	if ax != 0 || ay != 0 {
		t.Errorf("self-interaction not excluded: accel (%g, %g)", ax, ay)
	}
}

// TestZeroThetaMatchesDirect verifies the tree degenerates to the exact
// pairwise sum when every internal node is rejected
func TestZeroThetaMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 200
	xs := make([]float64, n)
	ys := make([]float64, n)
	ms := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = (rng.Float64()*2 - 1) * 1000
		ys[i] = (rng.Float64()*2 - 1) * 1000
		ms[i] = 1 + rng.Float64()*100
	}

	tree := NewQuadtree(n)
	tree.Build(xs, ys, ms)

	const g, soft = 100.0, 4.0
	var scratch []int32
	for i := 0; i < n; i++ {
		wantX, wantY := directAccel(i, xs, ys, ms, g, soft*soft)
		var gotX, gotY float64
		gotX, gotY, scratch = tree.AccelScratch(xs[i], ys[i], g, 0, soft*soft, scratch)

		mag := math.Hypot(wantX, wantY)
		if mag == 0 {
			continue
		}
		err := math.Hypot(gotX-wantX, gotY-wantY) / mag
		if err > 1e-9 {
			t.Fatalf("body %d: theta=0 accel (%g, %g) vs direct (%g, %g), rel err %g",
				i, gotX, gotY, wantX, wantY, err)
		}
	}
}

// TestThetaErrorBound verifies a practical theta stays within a few percent
// of the exact answer on a clustered distribution
func TestThetaErrorBound(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 500
	xs := make([]float64, n)
	ys := make([]float64, n)
	ms := make([]float64, n)
	for i := 0; i < n; i++ {
		angle := rng.Float64() * 2 * math.Pi
		r := 200 + rng.Float64()*800
		xs[i] = math.Cos(angle) * r
		ys[i] = math.Sin(angle) * r
		ms[i] = 1 + rng.Float64()*50
	}

	tree := NewQuadtree(n)
	tree.Build(xs, ys, ms)

	const g, soft, theta = 100.0, 4.0, 0.5
	var scratch []int32
	var worst float64
	for i := 0; i < n; i++ {
		wantX, wantY := directAccel(i, xs, ys, ms, g, soft*soft)
		var gotX, gotY float64
		gotX, gotY, scratch = tree.AccelScratch(xs[i], ys[i], g, theta, soft*soft, scratch)

		mag := math.Hypot(wantX, wantY)
		if mag == 0 {
			continue
		}
		if err := math.Hypot(gotX-wantX, gotY-wantY) / mag; err > worst {
			worst = err
		}
	}
	if worst > 0.05 {
		t.Errorf("theta=0.5 worst-case relative error %g exceeds 5%%", worst)
	}
}

// TestCoincidentBodies verifies identical positions terminate and merge
// instead of splitting forever
func TestCoincidentBodies(t *testing.T) {
	xs := []float64{10, 10, 10, -10}
	ys := []float64{5, 5, 5, -5}
	ms := []float64{100, 200, 300, 50}

	tree := NewQuadtree(4)
	tree.Build(xs, ys, ms) // must not hang or overflow

	if tree.Count() != 4 {
		t.Errorf("expected 4 bodies counted, got %d", tree.Count())
	}

	// The stacked bodies attract the lone one as their combined mass.
	ax, _, _ := tree.AccelScratch(-10, -5, 1, 0, 0, nil)
	d2 := 20.0*20 + 10.0*10
	want := 600.0 * 20.0 / (d2 * math.Sqrt(d2))
	if math.Abs(ax-want)/want > 1e-9 {
		t.Errorf("merged mass accel: got %g, want %g", ax, want)
	}
}

// BenchmarkAccel measures one force query against a 10k-body tree.
func BenchmarkAccel(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	n := 10_000
	xs := make([]float64, n)
	ys := make([]float64, n)
	ms := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = (rng.Float64()*2 - 1) * 5000
		ys[i] = (rng.Float64()*2 - 1) * 5000
		ms[i] = 1 + rng.Float64()*100
	}
	tree := NewQuadtree(n)
	tree.Build(xs, ys, ms)

	var scratch []int32
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, scratch = tree.AccelScratch(xs[i%n], ys[i%n], 100, 0.6, 16, scratch)
	}
}

// TestBoundsCoverAllBodies verifies the root square contains every input
func TestBoundsCoverAllBodies(t *testing.T) {
	xs := []float64{-300, 50, 900}
	ys := []float64{100, -800, 20}
	ms := []float64{1, 1, 1}

	tree := NewQuadtree(3)
	tree.Build(xs, ys, ms)

	cx, cy, half := tree.Bounds()
	for i := range xs {
		if math.Abs(xs[i]-cx) > half || math.Abs(ys[i]-cy) > half {
			t.Errorf("body %d (%g, %g) outside root square center (%g, %g) half %g",
				i, xs[i], ys[i], cx, cy, half)
		}
	}
}
