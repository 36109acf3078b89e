package forest

import (
	"errors"
	"math"
	"testing"

	"epibox/internal/core"
)

func mustRows(t *testing.T, rows [][]Cell) *Forest {
	t.Helper()
	f, err := FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	return f
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	rng := core.NewRNG(1)
	for _, p := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		if _, err := New(5, p, rng); !errors.Is(err, ErrInvalidProbability) {
			t.Fatalf("New(5, %v) error = %v, want ErrInvalidProbability", p, err)
		}
	}
	for _, n := range []int{0, -3} {
		if _, err := New(n, 0.5, rng); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("New(%d, 0.5) error = %v, want ErrInvalidSize", n, err)
		}
	}
}

func TestNewDensityExtremes(t *testing.T) {
	empty, err := New(8, 0, core.NewRNG(3))
	if err != nil {
		t.Fatal(err)
	}
	if got := empty.Count(Empty); got != 64 {
		t.Fatalf("density 0 produced %d empty cells, want 64", got)
	}

	full, err := New(8, 1, core.NewRNG(3))
	if err != nil {
		t.Fatal(err)
	}
	if got := full.Count(Tree); got != 64 {
		t.Fatalf("density 1 produced %d trees, want 64", got)
	}
}

func TestNewDeterministicForSeed(t *testing.T) {
	a, _ := New(16, 0.5, core.NewRNG(99))
	b, _ := New(16, 0.5, core.NewRNG(99))
	if a.String() != b.String() {
		t.Fatal("same seed produced different forests")
	}
	c, _ := New(16, 0.5, core.NewRNG(100))
	if a.String() == c.String() {
		t.Fatal("different seeds should produce different forests")
	}
}

func TestFromRowsRejectsNonSquare(t *testing.T) {
	_, err := FromRows([][]Cell{{Tree, Tree}, {Tree}})
	if !errors.Is(err, ErrNonSquare) {
		t.Fatalf("FromRows error = %v, want ErrNonSquare", err)
	}
	if _, err := FromRows(nil); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("FromRows(nil) error = %v, want ErrInvalidSize", err)
	}
}

func TestUpdateEmptyGridIsFixedPoint(t *testing.T) {
	f, _ := New(6, 0, core.NewRNG(1))
	before := f.String()
	f.Update()
	if f.String() != before {
		t.Fatal("update changed an all-empty grid")
	}
	if !f.NoFire() {
		t.Fatal("all-empty grid must report no fire")
	}
}

func TestIsolatedFireBurnsOut(t *testing.T) {
	f := mustRows(t, [][]Cell{
		{Empty, Empty, Empty},
		{Empty, Burning, Empty},
		{Empty, Empty, Empty},
	})
	f.Update()
	if f.At(1, 1) != Empty {
		t.Fatalf("burning cell became %v, want empty", f.At(1, 1))
	}
	if !f.NoFire() {
		t.Fatal("no new cell should ignite")
	}
}

func TestFireSpreadsToAllMooreNeighbors(t *testing.T) {
	f := mustRows(t, [][]Cell{
		{Tree, Tree, Tree},
		{Tree, Burning, Tree},
		{Tree, Tree, Tree},
	})
	f.Update()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			want := Burning
			if row == 1 && col == 1 {
				want = Empty
			}
			if got := f.At(row, col); got != want {
				t.Fatalf("cell (%d,%d) = %v, want %v", row, col, got, want)
			}
		}
	}
	f.Update()
	if f.Count(Empty) != 9 || !f.NoFire() {
		t.Fatalf("fire should burn out after one more tick:\n%s", f)
	}
}

func TestUpdateIsSynchronous(t *testing.T) {
	// A tree two columns away must not catch in the same tick.
	f := mustRows(t, [][]Cell{
		{Burning, Tree, Tree, Tree},
		{Empty, Empty, Empty, Empty},
		{Empty, Empty, Empty, Empty},
		{Empty, Empty, Empty, Empty},
	})
	f.Update()
	if f.At(0, 1) != Burning || f.At(0, 2) != Tree {
		t.Fatalf("unexpected row after first tick: %v %v %v", f.At(0, 1), f.At(0, 2), f.At(0, 3))
	}
	f.Update()
	if f.At(0, 1) != Empty || f.At(0, 2) != Burning || f.At(0, 3) != Tree {
		t.Fatalf("unexpected row after second tick: %v %v %v", f.At(0, 1), f.At(0, 2), f.At(0, 3))
	}
}

func TestUpdateDoesNotWrap(t *testing.T) {
	f := mustRows(t, [][]Cell{
		{Burning, Empty, Tree},
		{Empty, Empty, Empty},
		{Tree, Empty, Empty},
	})
	f.Update()
	if f.At(0, 2) != Tree || f.At(2, 0) != Tree {
		t.Fatalf("fire wrapped around the boundary:\n%s", f)
	}
}

func TestDiagonalSpreadAwayFromMainDiagonal(t *testing.T) {
	// Guards the column window: the fire at (3,0) must reach (2,1).
	f := mustRows(t, [][]Cell{
		{Empty, Empty, Empty, Empty},
		{Empty, Empty, Empty, Empty},
		{Empty, Tree, Empty, Empty},
		{Burning, Empty, Empty, Empty},
	})
	f.Update()
	if f.At(2, 1) != Burning {
		t.Fatalf("diagonal neighbour did not ignite:\n%s", f)
	}
}

func TestIgniteColumnOnlyTrees(t *testing.T) {
	f := mustRows(t, [][]Cell{
		{Tree, Tree},
		{Empty, Tree},
	})
	if n := f.IgniteColumn(0); n != 1 {
		t.Fatalf("IgniteColumn ignited %d trees, want 1", n)
	}
	if f.At(0, 0) != Burning || f.At(1, 0) != Empty {
		t.Fatalf("unexpected column 0 after ignition:\n%s", f)
	}
	if f.At(0, 1) != Tree {
		t.Fatal("ignition leaked into column 1")
	}
	if f.Percolated() {
		t.Fatal("rightmost column is not burning yet")
	}
	f.Update()
	if !f.Percolated() {
		t.Fatalf("fire should have reached the last column:\n%s", f)
	}
}

func TestOccupancyMarksTreesOnly(t *testing.T) {
	f := mustRows(t, [][]Cell{
		{Tree, Burning},
		{Empty, Tree},
	})
	occ := f.Occupancy()
	want := []bool{true, false, false, true}
	for i, v := range occ.Cells() {
		if v != want[i] {
			t.Fatalf("occupancy[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestString(t *testing.T) {
	f := mustRows(t, [][]Cell{
		{Tree, Burning},
		{Empty, Tree},
	})
	if got, want := f.String(), "T!\n T\n"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if got := f.Density(); got != 0.5 {
		t.Fatalf("Density() = %v, want 0.5", got)
	}
}
