// Package frontier enumerates the 24-puzzle's configuration space level by
// level: the distinct configurations at BFS depth d from the solved board.
//
// The reachable space (25!/2 configurations) dwarfs memory, so each level
// lives on disk as a stream of compact records and a level step is an
// external radix sort: expand every record of the previous frontier,
// partition the children by one tile's grid cell, refine the partition tile
// by tile until identical permutations sit adjacent, then coalesce
// duplicates by OR-ing their move masks. Only two levels' worth of files
// exist at any time.
package frontier

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/patterndb/compact"
	"github.com/hupe1980/patterndb/puzzle"
)

// bucketCount is the number of radix buckets, one per grid cell.
const bucketCount = puzzle.TileCount

// Engine performs frontier expansion rounds in a working directory.
type Engine struct {
	dir  string
	opts Options
}

// New creates an Engine storing its files under dir.
func New(dir string, optFns ...func(*Options)) *Engine {
	opts := defaultOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Engine{dir: dir, opts: opts}
}

// expand applies every unmasked move of rec and writes each child to the
// bucket of its last tile's cell. Children carry a mask for the move that
// would re-derive rec, so the parent is not rediscovered one level down.
func expand(buckets []*recordWriter, rec compact.Record) error {
	var p puzzle.Puzzle
	rec.Unpack(&p)
	zloc := p.ZeroLocation()
	mask := rec.Mask()

	for i, dest := range puzzle.Moves(zloc) {
		if mask&(1<<i) != 0 {
			continue
		}

		p.Move(dest)
		child := compact.PackMasked(&p, zloc)
		if err := buckets[child.Cell(puzzle.TileCount-1)].write(child); err != nil {
			return err
		}
		p.Move(zloc)
	}
	return nil
}

// distribute redistributes the records of in into buckets keyed by tile t's
// cell: one pass of the radix refinement.
func (e *Engine) distribute(buckets []*recordWriter, in *recordReader, t int) error {
	for {
		rec, err := in.read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := buckets[rec.Cell(t)].write(rec); err != nil {
			return err
		}
	}
}

// coalesce merges runs of records encoding the same permutation, OR-ing
// their move masks, and reports how many distinct records it wrote. After
// the full refinement identical permutations are adjacent, so a single
// sequential scan suffices.
func coalesce(out *recordWriter, in *recordReader) (uint64, error) {
	cur, err := in.read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var n uint64
	for {
		rec, err := in.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}

		if compact.SamePermutation(cur, rec) {
			cur = compact.Merge(cur, rec)
			continue
		}
		if err := out.write(cur); err != nil {
			return n, err
		}
		n++
		cur = rec
	}

	if err := out.write(cur); err != nil {
		return n, err
	}
	return n + 1, nil
}

// Round expands the frontier at inPath by one move and writes the next
// depth's coalesced frontier to outPath, returning the number of distinct
// configurations. Radix files are deleted as soon as they are consumed, so
// peak disk usage stays near two frontiers.
//
// The initial partition keys on tile 24; refinement then keys on tiles
// 22..0. That is one key short of the full tile count: with 24 tile cells
// fixed the remaining cell is implied, so tile 23 adds no discrimination.
func (e *Engine) Round(ctx context.Context, inPath, outPath string) (uint64, error) {
	limiter := rate.NewLimiter(rate.Every(e.opts.ProgressInterval), 1)

	// Expansion pass: previous frontier into buckets by tile 24.
	round := puzzle.TileCount - 2
	buckets, err := e.createBuckets(round)
	if err != nil {
		return 0, err
	}

	in, err := e.openRecords(inPath)
	if err != nil {
		_ = closeBuckets(buckets)
		return 0, err
	}

	var expanded uint64
	for {
		rec, err := in.read()
		if err == io.EOF {
			break
		}
		if err == nil {
			err = expand(buckets, rec)
		}
		if err != nil {
			_ = in.Close()
			_ = closeBuckets(buckets)
			return 0, err
		}

		if expanded++; expanded&65535 == 0 {
			if err := ctx.Err(); err != nil {
				_ = in.Close()
				_ = closeBuckets(buckets)
				return 0, err
			}
			if limiter.Allow() && e.opts.Logger != nil {
				e.opts.Logger.Info("expanding frontier", "in", inPath, "expanded", expanded)
			}
		}
	}
	if err := in.Close(); err != nil {
		_ = closeBuckets(buckets)
		return 0, err
	}
	if err := closeBuckets(buckets); err != nil {
		return 0, err
	}

	// Refinement passes: regroup by tiles 22..0, one tile per round.
	for ; round >= 1; round-- {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		next, err := e.createBuckets(round - 1)
		if err != nil {
			return 0, err
		}

		for loc := 0; loc < bucketCount; loc++ {
			old, err := e.openRecords(e.rdxPath(round, loc))
			if err == nil {
				err = e.distribute(next, old, round-1)
				if cerr := old.Close(); err == nil {
					err = cerr
				}
			}
			if err != nil {
				_ = closeBuckets(next)
				return 0, err
			}
			if err := os.Remove(e.rdxPath(round, loc)); err != nil {
				_ = closeBuckets(next)
				return 0, err
			}
		}
		if err := closeBuckets(next); err != nil {
			return 0, err
		}
	}

	// Coalesce pass: the final buckets are disjoint permutation ranges,
	// so they merge independently in parallel.
	counts := make([]uint64, bucketCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Jobs)
	for loc := 0; loc < bucketCount; loc++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			in, err := e.openRecords(e.rdxPath(round, loc))
			if err != nil {
				return err
			}
			out, err := e.createRecords(e.partPath(loc))
			if err != nil {
				_ = in.Close()
				return err
			}

			n, err := coalesce(out, in)
			if cerr := in.Close(); err == nil {
				err = cerr
			}
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			counts[loc] = n
			return os.Remove(e.rdxPath(round, loc))
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	// Stitch the coalesced parts into the next frontier in bucket order.
	out, err := e.createRecords(outPath)
	if err != nil {
		return 0, err
	}
	var total uint64
	for loc := 0; loc < bucketCount; loc++ {
		part, err := e.openRecords(e.partPath(loc))
		if err == nil {
			_, err = io.Copy(out.w, part.r)
			if cerr := part.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			_ = out.Close()
			return 0, fmt.Errorf("stitch %s: %w", e.partPath(loc), err)
		}
		if err := os.Remove(e.partPath(loc)); err != nil {
			_ = out.Close()
			return 0, err
		}
		total += counts[loc]
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	return total, nil
}
