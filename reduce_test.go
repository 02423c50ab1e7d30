package patterndb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patterndb/tileset"
)

func TestReduceIdentityRoundTrip(t *testing.T) {
	p := generated(t, tileset.New(1, 2))

	var buf bytes.Buffer
	require.NoError(t, p.Reduce(&buf, Identity()))

	// Compressed output is smaller than the raw table.
	assert.Less(t, buf.Len(), headerSize+int(p.Aux().TotalEntries()))

	got, err := LoadReduced(tileset.New(1, 2), &buf)
	require.NoError(t, err)
	assertSameTable(t, p, got)
}

func TestReduceClamp(t *testing.T) {
	p := generated(t, tileset.New(7, 18))

	const bound = 3
	var buf bytes.Buffer
	require.NoError(t, p.Reduce(&buf, Clamp(bound)))

	got, err := LoadReduced(tileset.New(7, 18), &buf)
	require.NoError(t, err)

	aux := p.Aux()
	clamped := false
	for off := uint64(0); off < aux.TotalEntries(); off++ {
		idx := aux.IndexAt(off)
		want := p.Lookup(idx)
		if want > bound {
			want = bound
			clamped = true
		}
		require.Equal(t, want, got.Lookup(idx), "offset %d", off)
	}
	assert.True(t, clamped, "bound never reached, test is vacuous")
}

func TestClampPreservesUnreached(t *testing.T) {
	policy := Clamp(5)
	assert.Equal(t, Unreached, policy(Unreached))
	assert.Equal(t, byte(5), policy(200))
	assert.Equal(t, byte(4), policy(4))
}

func TestReduceNilPolicy(t *testing.T) {
	p := generated(t, tileset.New(1))

	var buf bytes.Buffer
	require.NoError(t, p.Reduce(&buf, nil))

	got, err := LoadReduced(tileset.New(1), &buf)
	require.NoError(t, err)
	assertSameTable(t, p, got)
}

func TestLoadReducedRejectsRaw(t *testing.T) {
	p := generated(t, tileset.New(1))

	var buf bytes.Buffer
	require.NoError(t, p.Store(&buf))

	_, err := LoadReduced(tileset.New(1), &buf)
	assert.Error(t, err)
}
