// Package grid provides a uniform cell index over sphere centers for
// neighbor queries during packing.
//
// The index partitions the container's bounding box into cubic cells of
// edge length at least twice the largest sphere radius. Two spheres can
// only overlap if their cells are adjacent, so a query needs to visit at
// most the 3x3x3 block of cells around a position. Cells may be coarser
// than requested but never finer, which keeps the sweep exhaustive.
package grid

import (
	"math"

	"github.com/granulab/spherepack/pkg/geom"
)

// sizeMargin widens cells slightly beyond the 2x-max-radius minimum so
// spheres sitting exactly on a cell boundary cannot straddle the sweep.
const sizeMargin = 1.02

// maxCellsPerAxis bounds index memory at maxCellsPerAxis³ cells for very
// large containers holding very small spheres. Enlarging cells past the
// requested size is safe; only shrinking them would lose neighbors.
const maxCellsPerAxis = 128

// CellSizeFor returns the cell edge length for a population whose largest
// sphere has the given radius.
func CellSizeFor(maxRadius float64) float64 {
	return 2 * maxRadius * sizeMargin
}

// Index maps dense integer IDs (slice positions of the caller's spheres)
// to grid cells and answers neighborhood queries.
//
// The zero value is not usable; use New. Index is not safe for concurrent
// mutation. Concurrent readers must use NeighborsAppend with their own
// buffers; Neighbors shares an internal scratch buffer.
type Index struct {
	min        geom.Vec3
	cellSize   float64
	invCell    float64
	nx, ny, nz int

	cells   [][]int // flat row-major buckets of IDs
	cellOf  []int   // ID -> flat cell, -1 when absent
	scratch []int   // reused by Neighbors
}

// New creates an index covering the box from min to max with cells of at
// least the given edge length. A non-positive or non-finite cell size, or
// a degenerate box, collapses the index to a single cell, which stays
// correct for any population including the empty one.
func New(min, max geom.Vec3, cellSize float64) *Index {
	g := &Index{min: min, nx: 1, ny: 1, nz: 1}

	span := max.Sub(min)
	longest := math.Max(span[0], math.Max(span[1], span[2]))
	if !(cellSize > 0) || math.IsInf(cellSize, 0) || !(longest > 0) {
		g.cells = make([][]int, 1)
		return g
	}
	if longest/cellSize > maxCellsPerAxis {
		cellSize = longest / maxCellsPerAxis
	}

	g.cellSize = cellSize
	g.invCell = 1 / cellSize
	g.nx = dimFor(span[0], cellSize)
	g.ny = dimFor(span[1], cellSize)
	g.nz = dimFor(span[2], cellSize)
	g.cells = make([][]int, g.nx*g.ny*g.nz)
	return g
}

func dimFor(span, cellSize float64) int {
	n := int(math.Ceil(span / cellSize))
	if n < 1 {
		n = 1
	}
	return n
}

// CellCount returns the number of cells in the index.
func (g *Index) CellCount() int { return len(g.cells) }

// Len returns the number of IDs currently indexed.
func (g *Index) Len() int {
	n := 0
	for _, id := range g.cellOf {
		if id >= 0 {
			n++
		}
	}
	return n
}

// cellAt maps a position to its flat cell, clamping coordinates that fall
// outside the box onto the boundary cells.
func (g *Index) cellAt(p geom.Vec3) int {
	if len(g.cells) == 1 {
		return 0
	}
	x := clampDim(int((p[0]-g.min[0])*g.invCell), g.nx)
	y := clampDim(int((p[1]-g.min[1])*g.invCell), g.ny)
	z := clampDim(int((p[2]-g.min[2])*g.invCell), g.nz)
	return (z*g.ny+y)*g.nx + x
}

func clampDim(i, n int) int {
	return min(max(i, 0), n-1)
}

// Insert adds an ID at the given position. IDs must be dense from zero;
// inserting ID k grows the index to hold k+1 entries. Re-inserting an
// existing ID relocates it.
func (g *Index) Insert(id int, p geom.Vec3) {
	for len(g.cellOf) <= id {
		g.cellOf = append(g.cellOf, -1)
	}
	if g.cellOf[id] >= 0 {
		g.Move(id, p)
		return
	}
	c := g.cellAt(p)
	g.cells[c] = append(g.cells[c], id)
	g.cellOf[id] = c
}

// Move relocates an ID to the cell for its new position. It is a no-op
// when the ID stays in the same cell, which is the common case for the
// small displacements of a relaxation pass.
func (g *Index) Move(id int, p geom.Vec3) {
	from := g.cellOf[id]
	to := g.cellAt(p)
	if from == to {
		return
	}
	g.removeFromCell(id, from)
	g.cells[to] = append(g.cells[to], id)
	g.cellOf[id] = to
}

// removeFromCell deletes id from the bucket by swapping in the last entry.
// Bucket order is not meaningful, so swap-remove keeps deletion O(1).
func (g *Index) removeFromCell(id, cell int) {
	bucket := g.cells[cell]
	for i, v := range bucket {
		if v == id {
			last := len(bucket) - 1
			bucket[i] = bucket[last]
			g.cells[cell] = bucket[:last]
			return
		}
	}
}

// Neighbors returns every ID whose cell is within one cell of the given
// position, including any ID stored at the position itself. The returned
// slice is valid only until the next Neighbors call on this index.
func (g *Index) Neighbors(p geom.Vec3) []int {
	g.scratch = g.NeighborsAppend(g.scratch[:0], p)
	return g.scratch
}

// NeighborsAppend appends the neighborhood of p to dst and returns the
// extended slice. It performs no internal allocation beyond growing dst,
// so concurrent readers can query with per-goroutine buffers.
func (g *Index) NeighborsAppend(dst []int, p geom.Vec3) []int {
	if len(g.cells) == 1 {
		return append(dst, g.cells[0]...)
	}

	cx := clampDim(int((p[0]-g.min[0])*g.invCell), g.nx)
	cy := clampDim(int((p[1]-g.min[1])*g.invCell), g.ny)
	cz := clampDim(int((p[2]-g.min[2])*g.invCell), g.nz)

	x0, x1 := max(cx-1, 0), min(cx+1, g.nx-1)
	y0, y1 := max(cy-1, 0), min(cy+1, g.ny-1)
	z0, z1 := max(cz-1, 0), min(cz+1, g.nz-1)

	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			row := (z*g.ny + y) * g.nx
			for x := x0; x <= x1; x++ {
				dst = append(dst, g.cells[row+x]...)
			}
		}
	}
	return dst
}
