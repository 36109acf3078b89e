// Package cluster labels connected clusters of occupied sites with the
// Hoshen–Kopelman raster scan. Sites are 4-connected: during the scan a site
// looks only at its left and upper neighbours, and provisional labels that
// meet are merged through a disjoint set.
package cluster

import (
	"errors"
	"fmt"
	"slices"

	"epibox/internal/core"
)

// ErrNonSquare indicates fixture rows that do not form a square lattice.
var ErrNonSquare = errors.New("cluster: rows must form a square grid")

// Snapshotter is implemented by anything that can describe which sites are
// occupied.
type Snapshotter interface {
	Occupancy() *core.Grid[bool]
}

// Labeler owns an occupancy snapshot and the labels produced by scanning it.
type Labeler struct {
	occupied *core.Grid[bool]
	labels   *core.Grid[int]
	sizes    []int
	scanned  bool
}

// New wraps an occupancy grid. The grid is not copied.
func New(occupied *core.Grid[bool]) *Labeler {
	return &Labeler{occupied: occupied, labels: core.NewGrid[int](occupied.N)}
}

// From takes a fresh occupancy snapshot from s.
func From(s Snapshotter) *Labeler { return New(s.Occupancy()) }

// FromRows builds a labeler from explicit rows of occupancy flags.
func FromRows(rows [][]bool) (*Labeler, error) {
	n := len(rows)
	g := core.NewGrid[bool](n)
	for r, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNonSquare, r, len(row), n)
		}
		for c, v := range row {
			g.Set(r, c, v)
		}
	}
	return New(g), nil
}

// RasterScan labels every occupied site in row-major order. Final labels are
// compact: clusters are numbered 1..k in the order their first site is met.
// Calling it again is a no-op.
func (l *Labeler) RasterScan() *Labeler {
	if l.scanned {
		return l
	}
	n := l.occupied.N
	sets := NewDisjointSet(n*n/2 + 1)
	sets.MakeSet() // 0 is "unlabelled"

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if !l.occupied.At(row, col) {
				continue
			}
			left, above := 0, 0
			if col > 0 {
				left = l.labels.At(row, col-1)
			}
			if row > 0 {
				above = l.labels.At(row-1, col)
			}

			var label int
			switch {
			case left == 0 && above == 0:
				label = sets.MakeSet()
			case left == 0:
				label = above
			case above == 0:
				label = left
			default:
				label = sets.Union(left, above)
			}
			l.labels.Set(row, col, label)
		}
	}

	l.canonicalize(sets)
	l.scanned = true
	return l
}

func (l *Labeler) canonicalize(sets *DisjointSet) {
	final := make([]int, sets.Len())
	l.sizes = l.sizes[:0]
	cells := l.labels.Cells()
	for i, provisional := range cells {
		if provisional == 0 {
			continue
		}
		root := sets.Find(provisional)
		if final[root] == 0 {
			l.sizes = append(l.sizes, 0)
			final[root] = len(l.sizes)
		}
		cells[i] = final[root]
		l.sizes[final[root]-1]++
	}
}

// NoClusters returns the number of distinct clusters, which is also the
// largest label in the grid.
func (l *Labeler) NoClusters() int {
	l.RasterScan()
	return len(l.sizes)
}

// Label returns the final cluster label of (row, col), or 0 if unoccupied.
func (l *Labeler) Label(row, col int) int {
	l.RasterScan()
	return l.labels.At(row, col)
}

// Labels exposes the label grid after scanning.
func (l *Labeler) Labels() *core.Grid[int] {
	l.RasterScan()
	return l.labels
}

// Sizes returns the number of sites in each cluster, largest first.
func (l *Labeler) Sizes() []int {
	l.RasterScan()
	out := slices.Clone(l.sizes)
	slices.SortFunc(out, func(a, b int) int { return b - a })
	return out
}

// Largest returns the size of the biggest cluster, or 0 if there is none.
func (l *Labeler) Largest() int {
	l.RasterScan()
	if len(l.sizes) == 0 {
		return 0
	}
	return slices.Max(l.sizes)
}

// Spans reports whether a single cluster touches both the first and the last
// column.
func (l *Labeler) Spans() bool {
	l.RasterScan()
	n := l.labels.N
	if n == 0 {
		return false
	}
	first := make(map[int]struct{})
	for row := 0; row < n; row++ {
		if lbl := l.labels.At(row, 0); lbl != 0 {
			first[lbl] = struct{}{}
		}
	}
	for row := 0; row < n; row++ {
		if _, ok := first[l.labels.At(row, n-1)]; ok {
			return true
		}
	}
	return false
}
