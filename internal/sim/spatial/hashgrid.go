package spatial

import (
	"math"
)

// cellKey addresses a hash grid cell by integer coordinates, so the grid
// covers an unbounded world without preallocating a dense array.
type cellKey struct {
	x, y int32
}

// HashGrid is the collision broad-phase: bodies are binned into square cells
// sized to the mean body diameter, so any overlapping pair shares a cell or
// sits in adjacent cells. Cell slices are retained across Reset to avoid
// reallocation.
type HashGrid struct {
	cellSize    float64
	invCellSize float64
	cells       map[cellKey][]int32
}

// NewHashGrid creates an empty grid.
func NewHashGrid() *HashGrid {
	return &HashGrid{
		cellSize:    1,
		invCellSize: 1,
		cells:       make(map[cellKey][]int32, 256),
	}
}

// Reset clears all cells (keeping their capacity) and sets the cell size.
// Sizes below 1 are clamped so a cluster of tiny bodies cannot explode the
// cell count.
func (g *HashGrid) Reset(cellSize float64) {
	if cellSize < 1 {
		cellSize = 1
	}
	g.cellSize = cellSize
	g.invCellSize = 1 / cellSize
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
}

// CellSize returns the current cell size.
func (g *HashGrid) CellSize() float64 { return g.cellSize }

// Insert adds a body index at position (x, y).
func (g *HashGrid) Insert(id int32, x, y float64) {
	k := g.key(x, y)
	g.cells[k] = append(g.cells[k], id)
}

func (g *HashGrid) key(x, y float64) cellKey {
	return cellKey{
		x: int32(math.Floor(x * g.invCellSize)),
		y: int32(math.Floor(y * g.invCellSize)),
	}
}

// AppendNeighbors appends to dst every body index stored in the 3x3 cell
// block around (x, y) and returns the extended slice. Candidates appear in a
// deterministic order: fixed offset order, insertion order within a cell.
// The caller filters self and duplicates. Bodies further than 1.5 cells away
// are never returned, even if their extents overlap the query point.
func (g *HashGrid) AppendNeighbors(dst []int32, x, y float64) []int32 {
	center := g.key(x, y)
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			if ids, ok := g.cells[cellKey{center.x + dx, center.y + dy}]; ok {
				dst = append(dst, ids...)
			}
		}
	}
	return dst
}
