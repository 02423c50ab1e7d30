package frontier

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/hupe1980/patterndb/compact"
)

// Sample draws a uniform sample of at most SampleSize records from the
// frontier file at path and appends it to the sample stream as one block:
// depth and record count, then the records. Sampling is a separate pass
// over the frontier, independent of coalescing, so the policy can change
// without touching the engine.
//
// The reservoir is seeded from (Options.Seed, depth); equal seeds produce
// identical samples across runs.
func (e *Engine) Sample(ctx context.Context, path string, depth int) error {
	if e.opts.SampleFile == "" {
		return nil
	}

	in, err := e.openRecords(path)
	if err != nil {
		return err
	}
	defer in.Close()

	rng := rand.New(rand.NewPCG(e.opts.Seed, uint64(depth)))
	reservoir := make([]compact.Record, 0, e.opts.SampleSize)

	var seen uint64
	for {
		rec, err := in.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if seen < e.opts.SampleSize {
			reservoir = append(reservoir, rec)
		} else if j := rng.Uint64N(seen + 1); j < e.opts.SampleSize {
			reservoir[j] = rec
		}

		if seen++; seen&65535 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	f, err := os.OpenFile(e.opts.SampleFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}

	bw := bufio.NewWriterSize(f, fileBufSize)
	hdr := struct {
		Depth uint32
		Count uint64
	}{Depth: uint32(depth), Count: uint64(len(reservoir))}
	err = binary.Write(bw, binary.LittleEndian, &hdr)
	for _, rec := range reservoir {
		if err != nil {
			break
		}
		err = compact.WriteRecord(bw, rec)
	}
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	return nil
}
