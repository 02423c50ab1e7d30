package patterndb

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patterndb/blobstore"
	"github.com/hupe1980/patterndb/tileset"
)

func generated(t *testing.T, ts tileset.Tileset) *PDB {
	t.Helper()

	p, err := Allocate(ts)
	require.NoError(t, err)
	require.NoError(t, p.Generate(context.Background()))
	return p
}

func assertSameTable(t *testing.T, want, got *PDB) {
	t.Helper()

	aux := want.Aux()
	require.Equal(t, aux.Tileset(), got.Aux().Tileset())
	for off := uint64(0); off < aux.TotalEntries(); off++ {
		idx := aux.IndexAt(off)
		require.Equal(t, want.Lookup(idx), got.Lookup(idx), "offset %d", off)
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	for _, ts := range []tileset.Tileset{tileset.New(1, 2), tileset.New(0, 1, 2)} {
		p := generated(t, ts)

		var buf bytes.Buffer
		require.NoError(t, p.Store(&buf))
		assert.Equal(t, headerSize+int(p.Aux().TotalEntries()), buf.Len())

		got, err := Load(ts, &buf)
		require.NoError(t, err)
		assertSameTable(t, p, got)
	}
}

func TestLoadBadMagic(t *testing.T) {
	p := generated(t, tileset.New(1, 2))

	var buf bytes.Buffer
	require.NoError(t, p.Store(&buf))
	buf.Bytes()[0] ^= 0xff

	_, err := Load(tileset.New(1, 2), &buf)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestLoadBadVersion(t *testing.T) {
	p := generated(t, tileset.New(1, 2))

	var buf bytes.Buffer
	require.NoError(t, p.Store(&buf))
	buf.Bytes()[4] = 99

	_, err := Load(tileset.New(1, 2), &buf)
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestLoadTilesetMismatch(t *testing.T) {
	p := generated(t, tileset.New(1, 2))

	var buf bytes.Buffer
	require.NoError(t, p.Store(&buf))

	_, err := Load(tileset.New(1, 3), &buf)

	var mismatch *ErrTilesetMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, tileset.New(1, 3), mismatch.Expected)
	assert.Equal(t, tileset.New(1, 2), mismatch.Actual)
}

func TestLoadTruncated(t *testing.T) {
	p := generated(t, tileset.New(1, 2))

	var buf bytes.Buffer
	require.NoError(t, p.Store(&buf))

	for _, n := range []int{0, headerSize - 2, headerSize + 10} {
		_, err := Load(tileset.New(1, 2), bytes.NewReader(buf.Bytes()[:n]))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "truncated to %d", n)
	}
}

func TestSaveLoadFile(t *testing.T) {
	p := generated(t, tileset.New(1, 2))

	filename := filepath.Join(t.TempDir(), "pair.pdb")
	require.NoError(t, SaveFile(filename, p))

	// No temp residue next to the target.
	entries, err := os.ReadDir(filepath.Dir(filename))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := LoadFile(filename, tileset.New(1, 2))
	require.NoError(t, err)
	assertSameTable(t, p, got)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.pdb"), tileset.New(1))
	assert.Error(t, err)
}

func TestMmap(t *testing.T) {
	p := generated(t, tileset.New(1, 2))

	filename := filepath.Join(t.TempDir(), "pair.pdb")
	require.NoError(t, SaveFile(filename, p))

	m, err := Mmap(filename, tileset.New(1, 2))
	require.NoError(t, err)

	aux := p.Aux()
	for off := uint64(0); off < aux.TotalEntries(); off++ {
		idx := aux.IndexAt(off)
		assert.Equal(t, p.Lookup(idx), m.Lookup(idx))
	}
	m.Prefetch(aux.IndexAt(0))

	require.NoError(t, m.Close())
	assert.NoError(t, m.Close()) // idempotent
}

func TestMmapSizeMismatch(t *testing.T) {
	p := generated(t, tileset.New(1, 2))

	filename := filepath.Join(t.TempDir(), "pair.pdb")
	require.NoError(t, SaveFile(filename, p))

	_, err := Mmap(filename, tileset.New(1, 2, 3))

	var mismatch *ErrSizeMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestSaveLoadBlob(t *testing.T) {
	ctx := context.Background()
	p := generated(t, tileset.New(1, 2))

	store := blobstore.NewMemoryStore()
	require.NoError(t, SaveBlob(ctx, store, "tables/pair.pdb", p))

	names, err := store.List(ctx, "tables/")
	require.NoError(t, err)
	assert.Equal(t, []string{"tables/pair.pdb"}, names)

	got, err := LoadBlob(ctx, store, "tables/pair.pdb", tileset.New(1, 2))
	require.NoError(t, err)
	assertSameTable(t, p, got)
}

func TestLoadBlobMissing(t *testing.T) {
	store := blobstore.NewMemoryStore()
	_, err := LoadBlob(context.Background(), store, "nope", tileset.New(1))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
