package patterndb

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/patterndb/tileset"
)

// ReducePolicy transforms one distance value during reduction. Policies are
// tileset-dependent; Clamp is the common one.
type ReducePolicy func(byte) byte

// Clamp caps finite distances at bound. Lookups against a clamped table
// stay admissible: the bound is a lower bound on any clamped distance.
// Unreached is preserved.
func Clamp(bound byte) ReducePolicy {
	return func(d byte) byte {
		if d != Unreached && d > bound {
			return bound
		}
		return d
	}
}

// Identity leaves every entry as is, reducing to plain zstd compression.
func Identity() ReducePolicy {
	return func(d byte) byte { return d }
}

// Reduce writes a compressed representation of the table: the usual header
// and per-rank tables with policy applied to each entry, zstd-compressed.
// The clamped value runs compress extremely well, which is the point of
// reducing in the first place.
func (p *PDB) Reduce(w io.Writer, policy ReducePolicy) error {
	if policy == nil {
		policy = Identity()
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("reduce: %w", err)
	}

	if err := p.storeTransformed(zw, policy); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

func (p *PDB) storeTransformed(w io.Writer, policy ReducePolicy) error {
	hdr := fileHeader{
		Magic:   magicNumber,
		Version: formatVersion,
		Tileset: uint32(p.aux.Tileset()),
		Ranks:   p.aux.NumRanks(),
		Entries: p.aux.TotalEntries(),
	}
	if err := binary.Write(w, byteOrder, &hdr); err != nil {
		return fmt.Errorf("reduce header: %w", err)
	}

	buf := make([]byte, 64*1024)
	for r, t := range p.tables {
		src := t.Bytes()
		for len(src) > 0 {
			n := min(len(src), len(buf))
			for i := 0; i < n; i++ {
				buf[i] = policy(src[i])
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return fmt.Errorf("reduce rank %d: %w", r, err)
			}
			src = src[n:]
		}
	}
	return nil
}

// LoadReduced reads a table written by Reduce. The policy applied at write
// time is not recorded; the caller is expected to know what the entries
// mean.
func LoadReduced(ts tileset.Tileset, r io.Reader) (*PDB, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("load reduced: %w", err)
	}
	defer zr.Close()

	return Load(ts, zr)
}
