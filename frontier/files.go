package frontier

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/patterndb/compact"
)

const fileBufSize = 256 * 1024

// rdxPath names the radix bucket file for one refinement round and grid
// location. The naming is deterministic so crashed runs can be cleaned up
// by hand.
func (e *Engine) rdxPath(round, loc int) string {
	return filepath.Join(e.dir, fmt.Sprintf("rdx-%02d-%02d.cp", round, loc))
}

func (e *Engine) partPath(loc int) string {
	return filepath.Join(e.dir, fmt.Sprintf("part-%02d.cp", loc))
}

// FrontierPath names the coalesced frontier file for a depth.
func (e *Engine) FrontierPath(depth int) string {
	return filepath.Join(e.dir, fmt.Sprintf("frontier-%03d.cp", depth))
}

// recordWriter writes a stream of compact records to a file, buffered and
// optionally lz4-compressed.
type recordWriter struct {
	path string
	f    *os.File
	bw   *bufio.Writer
	lz   *lz4.Writer
	w    io.Writer
}

func (e *Engine) createRecords(path string) (*recordWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := &recordWriter{path: path, f: f}
	w.bw = bufio.NewWriterSize(f, fileBufSize)
	if e.opts.Compress {
		w.lz = lz4.NewWriter(w.bw)
		w.w = w.lz
	} else {
		w.w = w.bw
	}
	return w, nil
}

func (w *recordWriter) write(rec compact.Record) error {
	if err := compact.WriteRecord(w.w, rec); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return nil
}

func (w *recordWriter) Close() error {
	if w.lz != nil {
		if err := w.lz.Close(); err != nil {
			_ = w.f.Close()
			return fmt.Errorf("close %s: %w", w.path, err)
		}
	}
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	return nil
}

// recordReader reads a stream of compact records written by recordWriter.
type recordReader struct {
	path string
	f    *os.File
	r    io.Reader
}

func (e *Engine) openRecords(path string) (*recordReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := &recordReader{path: path, f: f}
	br := bufio.NewReaderSize(f, fileBufSize)
	if e.opts.Compress {
		r.r = lz4.NewReader(br)
	} else {
		r.r = br
	}
	return r, nil
}

// read returns the next record, or io.EOF at a clean end of stream. A
// truncated record is an error.
func (r *recordReader) read() (compact.Record, error) {
	rec, err := compact.ReadRecord(r.r)
	if err != nil && err != io.EOF {
		return rec, fmt.Errorf("read %s: %w", r.path, err)
	}
	return rec, err
}

func (r *recordReader) Close() error { return r.f.Close() }

// createBuckets opens one bucket writer per grid location for a refinement
// round.
func (e *Engine) createBuckets(round int) ([]*recordWriter, error) {
	buckets := make([]*recordWriter, bucketCount)
	for loc := range buckets {
		w, err := e.createRecords(e.rdxPath(round, loc))
		if err != nil {
			for _, b := range buckets[:loc] {
				_ = b.Close()
			}
			return nil, err
		}
		buckets[loc] = w
	}
	return buckets, nil
}

func closeBuckets(buckets []*recordWriter) error {
	var firstErr error
	for _, b := range buckets {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
