package patterndb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/hupe1980/patterndb/index"
	"github.com/hupe1980/patterndb/tileset"
)

// MappedPDB is a read-only pattern database backed by a memory-mapped file
// written by Store/SaveFile. Lookups read the mapping directly; nothing is
// copied to the heap. Close unmaps the file, after which the table must not
// be used.
type MappedPDB struct {
	aux    *index.Aux
	data   []byte
	tables [][]byte
	f      *os.File
}

// Mmap opens filename and maps it read-only, validating the header against
// ts exactly like Load.
func Mmap(filename string, ts tileset.Tileset) (*MappedPDB, error) {
	aux, err := index.NewAux(ts)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	want := int64(headerSize) + int64(aux.TotalEntries())
	if fi.Size() != want {
		_ = f.Close()
		return nil, &ErrSizeMismatch{Field: "file size", Expected: uint64(want), Actual: uint64(fi.Size())}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap %s: %w", filename, err)
	}

	var hdr fileHeader
	if err := binary.Read(bytes.NewReader(data[:headerSize]), byteOrder, &hdr); err != nil {
		_ = unix.Munmap(data)
		_ = f.Close()
		return nil, err
	}
	if err := validateHeader(aux, &hdr); err != nil {
		_ = unix.Munmap(data)
		_ = f.Close()
		return nil, err
	}

	// PDB lookups are scattered; tell the kernel not to read ahead.
	_ = unix.Madvise(data, unix.MADV_RANDOM)

	m := &MappedPDB{
		aux:    aux,
		data:   data,
		tables: make([][]byte, aux.NumRanks()),
		f:      f,
	}
	off := uint64(headerSize)
	for r := range m.tables {
		sz := aux.TableSize(uint32(r))
		m.tables[r] = data[off : off+sz]
		off += sz
	}
	return m, nil
}

// Aux returns the index descriptor.
func (m *MappedPDB) Aux() *index.Aux { return m.aux }

// Lookup returns the distance stored for idx.
func (m *MappedPDB) Lookup(idx index.Index) byte {
	off := uint64(idx.Perm)*uint64(m.aux.EqCount(idx.MapRank)) + uint64(idx.Eq)
	return m.tables[idx.MapRank][off]
}

// Prefetch touches the page holding idx so a following Lookup does not
// fault. No observable effect beyond latency.
func (m *MappedPDB) Prefetch(idx index.Index) {
	off := uint64(idx.Perm)*uint64(m.aux.EqCount(idx.MapRank)) + uint64(idx.Eq)
	prefetchSink = m.tables[idx.MapRank][off]
}

// Close unmaps the table and closes the underlying file.
func (m *MappedPDB) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	m.tables = nil
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
