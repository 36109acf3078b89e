// Package forest implements the forest-fire cellular automaton used for
// percolation experiments: trees are planted once, fire spreads through the
// Moore neighbourhood, burning cells burn out after a single tick and nothing
// regrows.
package forest

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"epibox/internal/core"
)

// Cell enumerates the state of a single lattice site.
type Cell uint8

const (
	Empty Cell = iota
	Tree
	Burning
)

// String renders the cell as a single character.
func (c Cell) String() string {
	switch c {
	case Tree:
		return "T"
	case Burning:
		return "!"
	default:
		return " "
	}
}

var (
	// ErrInvalidSize indicates a non-positive side length.
	ErrInvalidSize = errors.New("forest: size must be positive")
	// ErrInvalidProbability indicates a vegetation probability outside [0,1].
	ErrInvalidProbability = errors.New("forest: probability must be within [0,1]")
	// ErrNonSquare indicates fixture rows that do not form a square lattice.
	ErrNonSquare = errors.New("forest: rows must form a square grid")
)

// Forest owns a square lattice of cells and advances it one tick at a time.
type Forest struct {
	size    int
	density float64
	cur     *core.Grid[Cell]
	nxt     *core.Grid[Cell]
}

// New plants a size×size forest where each site independently holds a tree
// with the given probability.
func New(size int, probability float64, rng *core.RNG) (*Forest, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if err := ValidateProbability(probability); err != nil {
		return nil, err
	}
	f := &Forest{
		size:    size,
		density: probability,
		cur:     core.NewGrid[Cell](size),
		nxt:     core.NewGrid[Cell](size),
	}
	cells := f.cur.Cells()
	for i := range cells {
		if rng.Bernoulli(probability) {
			cells[i] = Tree
		}
	}
	return f, nil
}

// FromRows builds a forest from explicit rows. Density is reported as the
// fraction of tree sites.
func FromRows(rows [][]Cell) (*Forest, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: got 0", ErrInvalidSize)
	}
	f := &Forest{size: n, cur: core.NewGrid[Cell](n), nxt: core.NewGrid[Cell](n)}
	for r, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNonSquare, r, len(row), n)
		}
		for c, v := range row {
			f.cur.Set(r, c, v)
		}
	}
	f.density = float64(f.cur.Count(Tree)) / float64(n*n)
	return f, nil
}

// ValidateProbability rejects probabilities outside [0,1], including NaN.
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidProbability, p)
	}
	return nil
}

// Size returns the side length of the lattice.
func (f *Forest) Size() int { return f.size }

// Density returns the vegetation probability the forest was planted with.
func (f *Forest) Density() float64 { return f.density }

// At returns the state of the cell at (row, col).
func (f *Forest) At(row, col int) Cell { return f.cur.At(row, col) }

// Set overwrites the state of the cell at (row, col).
func (f *Forest) Set(row, col int, c Cell) { f.cur.Set(row, col, c) }

// Count returns how many cells currently hold state c.
func (f *Forest) Count(c Cell) int { return f.cur.Count(c) }

// IgniteColumn sets every tree in column col on fire and returns how many
// trees were ignited.
func (f *Forest) IgniteColumn(col int) int {
	ignited := 0
	f.cur.MapColumn(col, func(c Cell) Cell {
		if c == Tree {
			ignited++
			return Burning
		}
		return c
	})
	return ignited
}

// Update advances the lattice by one synchronous tick. Burning cells burn
// out, trees next to fire catch, empty cells stay empty.
func (f *Forest) Update() {
	n := f.size
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			next := Empty
			if f.cur.At(row, col) == Tree {
				next = Tree
				if f.burningNeighbor(row, col) {
					next = Burning
				}
			}
			f.nxt.Set(row, col, next)
		}
	}
	f.cur, f.nxt = f.nxt, f.cur
}

func (f *Forest) burningNeighbor(row, col int) bool {
	r0, r1, c0, c1 := f.cur.Window(row, col)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if r == row && c == col {
				continue
			}
			if f.cur.At(r, c) == Burning {
				return true
			}
		}
	}
	return false
}

// NoFire reports whether no cell is burning.
func (f *Forest) NoFire() bool { return !f.cur.Contains(Burning) }

// ColumnBurning reports whether any cell in column col is burning.
func (f *Forest) ColumnBurning(col int) bool {
	return f.cur.ColumnAny(col, func(c Cell) bool { return c == Burning })
}

// Percolated reports whether the fire has reached the rightmost column.
func (f *Forest) Percolated() bool { return f.ColumnBurning(f.size - 1) }

// Occupancy returns a snapshot marking tree sites as occupied. Burning and
// empty sites are unoccupied.
func (f *Forest) Occupancy() *core.Grid[bool] {
	return core.Map(f.cur, func(c Cell) bool { return c == Tree })
}

// String renders the lattice one row per line.
func (f *Forest) String() string {
	var b strings.Builder
	b.Grow(f.size * (f.size + 1))
	for row := 0; row < f.size; row++ {
		for col := 0; col < f.size; col++ {
			b.WriteString(f.cur.At(row, col).String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
