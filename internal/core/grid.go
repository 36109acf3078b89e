package core

// Grid stores a square N×N lattice of cell values in row-major order.
type Grid[T comparable] struct {
	N    int
	data []T
}

// NewGrid allocates an n×n grid filled with the zero value of T.
func NewGrid[T comparable](n int) *Grid[T] {
	if n < 0 {
		n = 0
	}
	return &Grid[T]{N: n, data: make([]T, n*n)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Grid[T]) Cells() []T { return g.data }

// Index returns the linear slice index for (row, col).
func (g *Grid[T]) Index(row, col int) int { return row*g.N + col }

// At returns the value stored at (row, col).
func (g *Grid[T]) At(row, col int) T { return g.data[row*g.N+col] }

// Set stores v at (row, col).
func (g *Grid[T]) Set(row, col int, v T) { g.data[row*g.N+col] = v }

// Window returns the inclusive bounds of the Moore neighbourhood around
// (row, col) clamped to the grid. There is no wraparound.
func (g *Grid[T]) Window(row, col int) (r0, r1, c0, c1 int) {
	r0, r1 = max(row-1, 0), min(row+1, g.N-1)
	c0, c1 = max(col-1, 0), min(col+1, g.N-1)
	return r0, r1, c0, c1
}

// ColumnAny reports whether any value in column col satisfies pred.
func (g *Grid[T]) ColumnAny(col int, pred func(T) bool) bool {
	for row := 0; row < g.N; row++ {
		if pred(g.data[row*g.N+col]) {
			return true
		}
	}
	return false
}

// MapColumn replaces every value in column col with fn(value).
func (g *Grid[T]) MapColumn(col int, fn func(T) T) {
	for row := 0; row < g.N; row++ {
		idx := row*g.N + col
		g.data[idx] = fn(g.data[idx])
	}
}

// Contains reports whether v occurs anywhere in the grid.
func (g *Grid[T]) Contains(v T) bool {
	for _, c := range g.data {
		if c == v {
			return true
		}
	}
	return false
}

// Count returns the number of cells equal to v.
func (g *Grid[T]) Count(v T) int {
	n := 0
	for _, c := range g.data {
		if c == v {
			n++
		}
	}
	return n
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid[T]) Clone() *Grid[T] {
	return &Grid[T]{N: g.N, data: append([]T(nil), g.data...)}
}

// Map builds a new grid of the same size by applying fn to every cell.
func Map[T, U comparable](g *Grid[T], fn func(T) U) *Grid[U] {
	out := NewGrid[U](g.N)
	for i, v := range g.data {
		out.data[i] = fn(v)
	}
	return out
}
