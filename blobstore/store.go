// Package blobstore abstracts where pattern database artifacts live:
// local directories, in-memory stores for tests, or S3-compatible object
// storage. Tables are immutable once written, so the interface is a plain
// get/put surface with random-access reads.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore is read access to immutable blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to one blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlobStore additionally supports uploading and managing blobs.
type WritableBlobStore interface {
	BlobStore

	// Put writes a blob of the given size from r. Implementations replace
	// an existing blob of the same name atomically or not at all.
	Put(ctx context.Context, name string, r io.Reader, size int64) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
