package patterndb

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/patterndb/blobstore"
	"github.com/hupe1980/patterndb/index"
	"github.com/hupe1980/patterndb/tileset"
)

// Binary format: fileHeader followed by one table per map rank, each a flat
// byte sequence (one byte per entry), in rank order. No compression, no
// checksum; the header's recorded sizes are validated against the requested
// tileset on load.
const (
	magicNumber   = 0x50444231 // "PDB1"
	formatVersion = 1
)

type fileHeader struct {
	Magic   uint32
	Version uint32
	Tileset uint32
	Ranks   uint64
	Entries uint64
}

const headerSize = 4 + 4 + 4 + 8 + 8

var byteOrder = binary.LittleEndian

// Store serializes the descriptor and each rank's table verbatim. Short
// writes surface as errors from w.
func (p *PDB) Store(w io.Writer) error {
	hdr := fileHeader{
		Magic:   magicNumber,
		Version: formatVersion,
		Tileset: uint32(p.aux.Tileset()),
		Ranks:   p.aux.NumRanks(),
		Entries: p.aux.TotalEntries(),
	}
	if err := binary.Write(w, byteOrder, &hdr); err != nil {
		return fmt.Errorf("store header: %w", err)
	}
	for r, t := range p.tables {
		if _, err := w.Write(t.Bytes()); err != nil {
			return fmt.Errorf("store rank %d: %w", r, err)
		}
	}
	return nil
}

// Load deserializes a table previously written by Store. The stream's
// recorded tileset and sizes must agree with ts; mismatches and truncation
// are typed errors and leave no usable table.
func Load(ts tileset.Tileset, r io.Reader) (*PDB, error) {
	aux, err := index.NewAux(ts)
	if err != nil {
		return nil, err
	}
	return loadWithAux(aux, r)
}

func loadWithAux(aux *index.Aux, r io.Reader) (*PDB, error) {
	var hdr fileHeader
	if err := binary.Read(r, byteOrder, &hdr); err != nil {
		return nil, fmt.Errorf("load header: %w", eofToUnexpected(err))
	}
	if err := validateHeader(aux, &hdr); err != nil {
		return nil, err
	}

	p := New(aux)
	for rank, t := range p.tables {
		if _, err := io.ReadFull(r, t.Bytes()); err != nil {
			return nil, fmt.Errorf("load rank %d: %w", rank, eofToUnexpected(err))
		}
	}
	return p, nil
}

func validateHeader(aux *index.Aux, hdr *fileHeader) error {
	if hdr.Magic != magicNumber {
		return fmt.Errorf("%w: got 0x%08x", ErrBadMagic, hdr.Magic)
	}
	if hdr.Version != formatVersion {
		return fmt.Errorf("%w: got %d", ErrBadVersion, hdr.Version)
	}
	if tileset.Tileset(hdr.Tileset) != aux.Tileset() {
		return &ErrTilesetMismatch{Expected: aux.Tileset(), Actual: tileset.Tileset(hdr.Tileset)}
	}
	if hdr.Ranks != aux.NumRanks() {
		return &ErrSizeMismatch{Field: "ranks", Expected: aux.NumRanks(), Actual: hdr.Ranks}
	}
	if hdr.Entries != aux.TotalEntries() {
		return &ErrSizeMismatch{Field: "entries", Expected: aux.TotalEntries(), Actual: hdr.Entries}
	}
	return nil
}

// eofToUnexpected maps a bare EOF mid-record to ErrUnexpectedEOF so callers
// can distinguish truncation from a clean end of stream.
func eofToUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// SaveFile writes pdb to filename via a temp file and atomic rename, so a
// crash never leaves a truncated table behind.
func SaveFile(filename string, pdb *PDB) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := pdb.Store(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	tmpName = ""
	return nil
}

// LoadFile reads a table written by SaveFile.
func LoadFile(filename string, ts tileset.Tileset) (*PDB, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(ts, bufio.NewReaderSize(f, 256*1024))
}

// LoadBlob fetches a stored table from a blob store.
func LoadBlob(ctx context.Context, store blobstore.BlobStore, name string, ts tileset.Tileset) (*PDB, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open blob %q: %w", name, err)
	}
	defer blob.Close()

	r := bufio.NewReaderSize(io.NewSectionReader(blob, 0, blob.Size()), 256*1024)
	return Load(ts, r)
}

// SaveBlob uploads pdb to a writable blob store.
func SaveBlob(ctx context.Context, store blobstore.WritableBlobStore, name string, pdb *PDB) error {
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := pdb.Store(pw)
		pw.CloseWithError(err)
		done <- err
	}()

	size := int64(headerSize) + int64(pdb.aux.TotalEntries())
	if err := store.Put(ctx, name, pr, size); err != nil {
		_ = pr.CloseWithError(err)
		<-done
		return fmt.Errorf("put blob %q: %w", name, err)
	}
	return <-done
}
