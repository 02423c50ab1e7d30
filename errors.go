package patterndb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/patterndb/index"
	"github.com/hupe1980/patterndb/tileset"
)

var (
	// ErrBadMagic is returned when a stream does not start with a PDB header.
	ErrBadMagic = errors.New("bad magic number")

	// ErrBadVersion is returned for an unsupported format version.
	ErrBadVersion = errors.New("unsupported format version")

	// ErrDistanceOverflow is returned when generation would need a distance
	// beyond MaxDist.
	ErrDistanceOverflow = errors.New("distance exceeds maximum")
)

// ErrTilesetMismatch indicates that a stored table belongs to a different
// tileset than the one requested.
type ErrTilesetMismatch struct {
	Expected tileset.Tileset
	Actual   tileset.Tileset
}

func (e *ErrTilesetMismatch) Error() string {
	return fmt.Sprintf("tileset mismatch: expected {%v}, stored {%v}", e.Expected, e.Actual)
}

// ErrSizeMismatch indicates that a stored table's recorded sizes disagree
// with the sizes the requested tileset implies.
type ErrSizeMismatch struct {
	Field    string
	Expected uint64
	Actual   uint64
}

func (e *ErrSizeMismatch) Error() string {
	return fmt.Sprintf("size mismatch: %s: expected %d, stored %d", e.Field, e.Expected, e.Actual)
}

// ErrInconsistent reports the first table entry found to violate the
// one-step move-distance relation during verification.
type ErrInconsistent struct {
	Index    index.Index
	Dist     byte
	Neighbor byte
	Reason   string
}

func (e *ErrInconsistent) Error() string {
	return fmt.Sprintf("inconsistent entry %v: dist %d, neighbor %d: %s",
		e.Index, e.Dist, e.Neighbor, e.Reason)
}
