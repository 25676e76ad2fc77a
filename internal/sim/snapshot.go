package sim

import (
	"sync/atomic"
	"time"
)

// Limits defines hard caps on engine resources. They bound worst-case tick
// cost and snapshot size regardless of what scenarios or intents request.
type Limits struct {
	MaxBodies         int // hard cap on live bodies
	MaxSnapshotBodies int // bodies copied per snapshot
	MaxEventsPerTick  int // events retained in the per-tick log
	MaxBurstCount     int // bodies per burst intent
	MaxIntentQueue    int // queued intents per tick
}

// DefaultLimits provides production-safe default limits.
var DefaultLimits = Limits{
	MaxBodies:         50_000,
	MaxSnapshotBodies: 50_000,
	MaxEventsPerTick:  4096,
	MaxBurstCount:     500,
	MaxIntentQueue:    256,
}

// BodySnapshot is an immutable copy of body state for presentation layers.
// Uses value types (not pointers) to ensure immutability.
type BodySnapshot struct {
	ID     uint64  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
	Class  string  `json:"class"`
	Alive  bool    `json:"alive"`
	Hazard bool    `json:"hazard,omitempty"`
	Player bool    `json:"player,omitempty"`
}

// Snapshot is a complete immutable view of one tick for presentation and
// controls layers: read-only body states, the tick's event log, mission and
// stats aggregates, and the overall run state for screen transitions.
type Snapshot struct {
	Sequence  uint64    `json:"sequence"`  // monotonic ordering
	Timestamp time.Time `json:"timestamp"` // when the snapshot was produced
	Tick      uint64    `json:"tick"`      // simulation tick it represents
	Seed      int64     `json:"seed"`      // scenario seed for replay

	Bodies []BodySnapshot `json:"bodies"`
	Events []Event        `json:"events"`

	Mission Mission  `json:"mission"`
	Stats   Stats    `json:"stats"`
	State   RunState `json:"state"`

	BodyCount   int `json:"bodyCount"`
	HazardCount int `json:"hazardCount"`
	PlayerIndex int `json:"playerIndex"` // index into Bodies, -1 when absent
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure. Triple
// buffering gives the tick loop a private write slot while readers hold the
// last published one, with no locks on either side.
type SnapshotPool struct {
	snapshots [3]Snapshot
	limits    Limits
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices.
func NewSnapshotPool(limits Limits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}
	for i := range pool.snapshots {
		pool.snapshots[i] = Snapshot{
			Bodies: make([]BodySnapshot, 0, limits.MaxSnapshotBodies),
			Events: make([]Event, 0, limits.MaxEventsPerTick),
		}
	}
	return pool
}

// AcquireWrite returns the next write slot with reset slices but preserved
// capacity. Producer only (the tick loop).
func (p *SnapshotPool) AcquireWrite() *Snapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Bodies = snap.Bodies[:0]
	snap.Events = snap.Events[:0]
	snap.PlayerIndex = -1
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite marks the write complete and advances the read pointer.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published snapshot. Consumers must treat it
// as read-only; it stays valid for two more ticks before the slot is reused.
func (p *SnapshotPool) AcquireRead() *Snapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// Limits returns the pool's resource limits.
func (p *SnapshotPool) Limits() Limits { return p.limits }
