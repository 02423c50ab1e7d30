package frontier

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/patterndb/compact"
	"github.com/hupe1980/patterndb/puzzle"
)

// Half of 25! tile permutations are reachable from the solved board; the
// other parity class is not.
const (
	// ConfCount is the number of legal configurations, 25!/2, as a float
	// for ratio output.
	ConfCount = 7755605021665492992000000.0

	// ConfCountStr is the same number exactly, for exact output.
	ConfCountStr = "7755605021665492992000000"
)

// Run enumerates frontiers depth by depth, writing one report line per
// depth: the depth, the number of distinct configurations, the total count
// of legal configurations and their ratio. It stops after Options.Limit
// depths or when a frontier is exhausted. Consumed frontier files are
// deleted as the run proceeds.
func (e *Engine) Run(ctx context.Context, w io.Writer) error {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return err
	}
	if e.opts.SampleFile != "" {
		// Start a fresh sample stream.
		if err := os.WriteFile(e.opts.SampleFile, nil, 0644); err != nil {
			return err
		}
	}

	// Depth 0 is the solved configuration itself, empty move mask.
	out, err := e.createRecords(e.FrontierPath(0))
	if err != nil {
		return err
	}
	solved := puzzle.Solved()
	if err := out.write(compact.Pack(&solved)); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Header format kept compatible with the statistical sample tooling.
	if _, err := fmt.Fprintf(w, "%s\n\n", ConfCountStr); err != nil {
		return err
	}
	if err := e.report(w, 0, 1); err != nil {
		return err
	}
	if err := e.Sample(ctx, e.FrontierPath(0), 0); err != nil {
		return err
	}

	for depth := 1; depth <= e.opts.Limit; depth++ {
		in, out := e.FrontierPath(depth-1), e.FrontierPath(depth)

		count, err := e.Round(ctx, in, out)
		if err != nil {
			return fmt.Errorf("depth %d: %w", depth, err)
		}
		if err := os.Remove(in); err != nil {
			return err
		}

		if err := e.report(w, depth, count); err != nil {
			return err
		}
		if count == 0 {
			return os.Remove(out)
		}

		if err := e.Sample(ctx, out, depth); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) report(w io.Writer, depth int, count uint64) error {
	_, err := fmt.Fprintf(w, "%3d: %18d/%s = %24.18e\n",
		depth, count, ConfCountStr, float64(count)/ConfCount)
	return err
}
