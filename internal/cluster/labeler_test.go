package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"epibox/internal/core"
	"epibox/internal/sims/forest"
)

func mustRows(t *testing.T, rows [][]bool) *Labeler {
	t.Helper()
	l, err := FromRows(rows)
	require.NoError(t, err)
	return l
}

func TestRasterScanSmallGrids(t *testing.T) {
	tests := []struct {
		name string
		rows [][]bool
		want int
	}{
		{"l-shape", [][]bool{{true, true}, {false, true}}, 1},
		{"diagonal only", [][]bool{{true, false}, {false, true}}, 2},
		{"single site", [][]bool{{false, false}, {true, false}}, 1},
		{"empty", [][]bool{{false, false}, {false, false}}, 0},
		{"u-shape merge", [][]bool{
			{true, false, true},
			{true, false, true},
			{true, true, true},
		}, 1},
		{"stripes", [][]bool{
			{true, false, true},
			{true, false, true},
			{true, false, true},
		}, 2},
		{"comb", [][]bool{
			{true, false, true, false, true},
			{true, false, true, false, true},
			{true, false, true, false, true},
			{true, true, true, true, true},
			{false, false, false, false, false},
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, mustRows(t, tt.rows).NoClusters())
		})
	}
}

func TestAllOccupiedIsOneCluster(t *testing.T) {
	for n := 1; n <= 8; n++ {
		g := core.NewGrid[bool](n)
		g.Fill(true)
		l := New(g)
		require.Equal(t, 1, l.NoClusters(), "n=%d", n)
		require.Equal(t, n*n, l.Largest(), "n=%d", n)
		require.True(t, l.Spans(), "n=%d", n)
	}
}

func TestAllEmptyHasNoClusters(t *testing.T) {
	l := New(core.NewGrid[bool](6))
	require.Zero(t, l.NoClusters())
	require.Zero(t, l.Largest())
	require.Empty(t, l.Sizes())
	require.False(t, l.Spans())
}

func TestLabelsAreCompact(t *testing.T) {
	// Labels 1 and 2 merge late; the isolated site must still come out as 2.
	l := mustRows(t, [][]bool{
		{true, false, true},
		{true, true, true},
		{false, false, false},
	})
	l2 := mustRows(t, [][]bool{
		{true, false, true, false},
		{true, true, true, false},
		{false, false, false, false},
		{false, false, false, true},
	})
	require.Equal(t, 1, l.NoClusters())
	require.Equal(t, 2, l2.NoClusters())
	require.Equal(t, 1, l2.Label(0, 2))
	require.Equal(t, 2, l2.Label(3, 3))
	require.Equal(t, 0, l2.Label(2, 0))

	maxLabel := 0
	for _, v := range l2.Labels().Cells() {
		maxLabel = max(maxLabel, v)
	}
	require.Equal(t, l2.NoClusters(), maxLabel)
}

func TestSizesLargestFirst(t *testing.T) {
	l := mustRows(t, [][]bool{
		{true, false, true},
		{false, false, true},
		{true, false, true},
	})
	require.Equal(t, []int{3, 1, 1}, l.Sizes())
	require.Equal(t, 3, l.Largest())
}

func TestSpans(t *testing.T) {
	spanning := mustRows(t, [][]bool{
		{false, false, false},
		{true, true, true},
		{false, false, false},
	})
	require.True(t, spanning.Spans())

	blocked := mustRows(t, [][]bool{
		{true, true, false},
		{false, false, false},
		{false, true, true},
	})
	require.False(t, blocked.Spans())
}

func TestFromRowsRejectsNonSquare(t *testing.T) {
	_, err := FromRows([][]bool{{true, true}, {true}})
	require.ErrorIs(t, err, ErrNonSquare)
}

func TestFromForestSnapshot(t *testing.T) {
	f, err := forest.FromRows([][]forest.Cell{
		{forest.Tree, forest.Burning, forest.Tree},
		{forest.Tree, forest.Empty, forest.Tree},
		{forest.Empty, forest.Empty, forest.Tree},
	})
	require.NoError(t, err)
	require.Equal(t, 2, From(f).NoClusters())
}

// floodFill counts 4-connected clusters with a breadth-first search.
func floodFill(g *core.Grid[bool]) (int, []int) {
	n := g.N
	seen := make([]bool, n*n)
	var sizes []int
	for start := range seen {
		if seen[start] || !g.Cells()[start] {
			continue
		}
		queue := []int{start}
		seen[start] = true
		size := 0
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			size++
			r, c := u/n, u%n
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nr, nc := r+d[0], c+d[1]
				if nr < 0 || nr >= n || nc < 0 || nc >= n {
					continue
				}
				v := nr*n + nc
				if !seen[v] && g.Cells()[v] {
					seen[v] = true
					queue = append(queue, v)
				}
			}
		}
		sizes = append(sizes, size)
	}
	return len(sizes), sizes
}

func TestRasterScanMatchesFloodFill(t *testing.T) {
	rng := core.NewRNG(2024)
	for _, density := range []float64{0.2, 0.45, 0.59, 0.7, 0.9} {
		for trial := 0; trial < 20; trial++ {
			f, err := forest.New(24, density, rng.Split())
			require.NoError(t, err)
			occ := f.Occupancy()

			wantCount, wantSizes := floodFill(occ)
			l := New(occ)
			require.Equal(t, wantCount, l.NoClusters(), "density=%v trial=%d", density, trial)
			require.ElementsMatch(t, wantSizes, l.Sizes(), "density=%v trial=%d", density, trial)
		}
	}
}

func TestRasterScanIdempotent(t *testing.T) {
	l := mustRows(t, [][]bool{{true, false}, {false, true}})
	require.Equal(t, 2, l.RasterScan().RasterScan().NoClusters())
}

func BenchmarkRasterScan(b *testing.B) {
	f, err := forest.New(200, 0.59, core.NewRNG(7))
	if err != nil {
		b.Fatal(err)
	}
	occ := f.Occupancy()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		New(occ).NoClusters()
	}
}
