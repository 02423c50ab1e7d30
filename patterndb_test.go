package patterndb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patterndb/index"
	"github.com/hupe1980/patterndb/tileset"
)

// referenceDistances computes every distance with a plain sequential
// breadth-first search, as an oracle for the concurrent build.
func referenceDistances(t *testing.T, aux *index.Aux) []byte {
	t.Helper()

	dist := make([]byte, aux.TotalEntries())
	for i := range dist {
		dist[i] = Unreached
	}

	var queue []index.Index
	for _, g := range aux.Goals() {
		dist[aux.Offset(g)] = 0
		queue = append(queue, g)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := dist[aux.Offset(cur)]
		for succ := range aux.Successors(cur) {
			if off := aux.Offset(succ); dist[off] == Unreached {
				dist[off] = d + 1
				queue = append(queue, succ)
			}
		}
	}
	return dist
}

func assertMatchesReference(t *testing.T, p *PDB) {
	t.Helper()

	aux := p.Aux()
	want := referenceDistances(t, aux)
	for off := uint64(0); off < aux.TotalEntries(); off++ {
		idx := aux.IndexAt(off)
		require.Equal(t, want[off], p.Lookup(idx), "offset %d", off)
	}
}

func TestAllocate(t *testing.T) {
	p, err := Allocate(tileset.New(1, 2))
	require.NoError(t, err)

	aux := p.Aux()
	assert.Equal(t, uint64(600), aux.TotalEntries())
	for off := uint64(0); off < aux.TotalEntries(); off++ {
		assert.Equal(t, Unreached, p.Lookup(aux.IndexAt(off)))
	}
}

func TestUpdateLookupClear(t *testing.T) {
	p, err := Allocate(tileset.New(1, 2))
	require.NoError(t, err)

	idx := p.Aux().IndexAt(17)
	p.Update(idx, 9)
	assert.Equal(t, byte(9), p.Lookup(idx))

	p.Clear()
	assert.Equal(t, Unreached, p.Lookup(idx))
}

func TestCompareAndSwapFirstWriterWins(t *testing.T) {
	p, err := Allocate(tileset.New(1, 2))
	require.NoError(t, err)

	idx := p.Aux().IndexAt(42)
	assert.True(t, p.CompareAndSwap(idx, Unreached, 3))
	assert.False(t, p.CompareAndSwap(idx, Unreached, 5))
	assert.Equal(t, byte(3), p.Lookup(idx))
}

func TestGenerateMatchesReference(t *testing.T) {
	tests := []struct {
		name string
		ts   tileset.Tileset
	}{
		{name: "two tiles", ts: tileset.New(1, 2)},
		{name: "two far tiles", ts: tileset.New(7, 18)},
		{name: "zero aware", ts: tileset.New(0, 1, 2)},
		{name: "zero aware walled goal", ts: tileset.New(0, 1, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Allocate(tt.ts)
			require.NoError(t, err)
			require.NoError(t, p.Generate(context.Background(), WithJobs(4)))

			assertMatchesReference(t, p)
		})
	}
}

func TestGenerateSingleTileManhattan(t *testing.T) {
	p, err := Allocate(tileset.New(1))
	require.NoError(t, err)
	require.NoError(t, p.Generate(context.Background()))

	// One tracked tile with a free board moves like a rook restricted to
	// unit steps, so its distance is the Manhattan metric to its home cell.
	home := 1
	for c := 0; c < 25; c++ {
		want := abs(c/5-home/5) + abs(c%5-home%5)
		assert.Equal(t, byte(want), p.Lookup(p.Aux().IndexAt(uint64(c))), "cell %d", c)
	}
	assert.True(t, p.Complete())
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func TestGenerateBlankOnly(t *testing.T) {
	p, err := Allocate(tileset.New(0))
	require.NoError(t, err)
	require.NoError(t, p.Generate(context.Background()))

	assert.Equal(t, byte(0), p.Lookup(p.Aux().IndexAt(0)))
	assert.True(t, p.Complete())
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Allocate(tileset.New(1, 2))
	require.NoError(t, err)
	require.NoError(t, a.Generate(context.Background(), WithJobs(1)))

	b, err := Allocate(tileset.New(1, 2))
	require.NoError(t, err)
	require.NoError(t, b.Generate(context.Background(), WithJobs(8)))

	aux := a.Aux()
	for off := uint64(0); off < aux.TotalEntries(); off++ {
		idx := aux.IndexAt(off)
		assert.Equal(t, a.Lookup(idx), b.Lookup(idx))
	}
}

func TestGenerateCanceled(t *testing.T) {
	p, err := Allocate(tileset.New(1, 2, 3))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Generate(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestHistogram(t *testing.T) {
	p, err := Allocate(tileset.New(1, 2))
	require.NoError(t, err)
	require.NoError(t, p.Generate(context.Background()))

	counts := p.Histogram()

	var total uint64
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, p.Aux().TotalEntries(), total)

	// A fully generated table has no unreached entries and one goal.
	assert.Zero(t, counts[Unreached])
	assert.Equal(t, uint64(1), counts[0])
	assert.True(t, p.Complete())
}

func TestHistogramUnreached(t *testing.T) {
	p, err := Allocate(tileset.New(1, 2))
	require.NoError(t, err)

	counts := p.Histogram()
	assert.Equal(t, p.Aux().TotalEntries(), counts[Unreached])
	assert.False(t, p.Complete())
}

func TestVerifyGenerated(t *testing.T) {
	for _, ts := range []tileset.Tileset{tileset.New(1, 2), tileset.New(0, 1, 2)} {
		p, err := Allocate(ts)
		require.NoError(t, err)
		require.NoError(t, p.Generate(context.Background()))

		assert.NoError(t, p.Verify(context.Background(), WithJobs(3)))
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	p, err := Allocate(tileset.New(1, 2))
	require.NoError(t, err)
	require.NoError(t, p.Generate(context.Background()))

	idx := p.Aux().IndexAt(123)
	good := p.Lookup(idx)
	p.Update(idx, good+3)

	err = p.Verify(context.Background(), WithJobs(1))
	require.Error(t, err)

	var inconsistent *ErrInconsistent
	assert.ErrorAs(t, err, &inconsistent)
}

func TestVerifyDetectsBadGoal(t *testing.T) {
	p, err := Allocate(tileset.New(1, 2))
	require.NoError(t, err)
	require.NoError(t, p.Generate(context.Background()))

	goal := p.Aux().Goals()[0]
	p.Update(goal, 2)

	var inconsistent *ErrInconsistent
	assert.ErrorAs(t, p.Verify(context.Background()), &inconsistent)
}

func BenchmarkGenerate(b *testing.B) {
	ts := tileset.New(0, 1, 2, 5)

	for i := 0; i < b.N; i++ {
		p, err := Allocate(ts)
		if err != nil {
			b.Fatal(err)
		}
		if err := p.Generate(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLookup(b *testing.B) {
	p, err := Allocate(tileset.New(0, 1, 2, 5))
	if err != nil {
		b.Fatal(err)
	}
	if err := p.Generate(context.Background()); err != nil {
		b.Fatal(err)
	}

	aux := p.Aux()
	n := aux.TotalEntries()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		prefetchSink = p.Lookup(aux.IndexAt(uint64(i) % n))
	}
}
