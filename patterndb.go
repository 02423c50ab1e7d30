package patterndb

import (
	"github.com/hupe1980/patterndb/index"
	"github.com/hupe1980/patterndb/internal/atomicbyte"
	"github.com/hupe1980/patterndb/tileset"
)

const (
	// Unreached marks an entry whose distance has not been computed yet.
	Unreached byte = 255

	// MaxDist is the largest representable finite distance.
	MaxDist byte = 254

	// MaxJobs bounds the worker count for generation and verification.
	MaxJobs = 256

	// HistogramLen is the number of buckets in a distance histogram.
	HistogramLen = 256
)

// PDB is a pattern database: one atomically accessible byte table per map
// rank, each entry the distance of the corresponding partial configuration
// or Unreached. The aux descriptor is immutable and shared; the tables are
// exclusively owned.
//
// Lookup, Update, CompareAndSwap and Prefetch are safe for concurrent use.
// Clear, Store, Histogram and Reduce assume no concurrent mutation.
type PDB struct {
	aux    *index.Aux
	tables []*atomicbyte.Array
}

// Allocate builds the index descriptor for ts and allocates a table with
// every entry Unreached.
func Allocate(ts tileset.Tileset) (*PDB, error) {
	aux, err := index.NewAux(ts)
	if err != nil {
		return nil, err
	}
	return New(aux), nil
}

// New allocates an all-Unreached table for an existing descriptor.
func New(aux *index.Aux) *PDB {
	tables := make([]*atomicbyte.Array, aux.NumRanks())
	for r := range tables {
		tables[r] = atomicbyte.New(int(aux.TableSize(uint32(r))), Unreached)
	}
	return &PDB{aux: aux, tables: tables}
}

// Aux returns the index descriptor.
func (p *PDB) Aux() *index.Aux { return p.aux }

// Clear resets every entry to Unreached, reusing the storage.
func (p *PDB) Clear() {
	for _, t := range p.tables {
		t.Fill(Unreached)
	}
}

// entry resolves idx to its table and byte offset. With the blank not
// tracked the equivalence-class dimension collapses to size 1.
func (p *PDB) entry(idx index.Index) (*atomicbyte.Array, int) {
	off := uint64(idx.Perm)*uint64(p.aux.EqCount(idx.MapRank)) + uint64(idx.Eq)
	return p.tables[idx.MapRank], int(off)
}

// Lookup atomically reads the distance stored for idx.
func (p *PDB) Lookup(idx index.Index) byte {
	t, off := p.entry(idx)
	return t.Load(off)
}

// Prefetch hints that idx will be looked up soon. It has no observable
// effect beyond latency.
func (p *PDB) Prefetch(idx index.Index) {
	t, off := p.entry(idx)
	prefetchSink = t.Load(off)
}

var prefetchSink byte

// Update atomically stores d for idx. The caller must hold exclusive claim
// to the entry; concurrent writers to the same entry race.
func (p *PDB) Update(idx index.Index, d byte) {
	t, off := p.entry(idx)
	t.Store(off, d)
}

// CompareAndSwap installs d for idx only if the entry still holds old,
// reporting whether it did. This is the primitive that makes concurrent
// frontier construction race-safe: first writer wins, later proposals see
// the installed value and fail.
func (p *PDB) CompareAndSwap(idx index.Index, old, d byte) bool {
	t, off := p.entry(idx)
	return t.CompareAndSwap(off, old, d)
}
