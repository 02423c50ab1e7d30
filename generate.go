package patterndb

import (
	"context"
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/patterndb/index"
)

// Generate fills the table by breadth-first search over the index space,
// seeded with distance 0 at the goal indices.
//
// Each round expands every index at the current frontier distance d and
// proposes d+1 for its successors with a compare-and-swap from Unreached.
// The first writer wins, so every entry is finalized exactly once with the
// true shortest distance regardless of discovery order across workers.
// Rounds are separated by a hard barrier: no worker starts on distance d+1
// before every worker has finished expanding distance d.
//
// A canceled context aborts the run; the table is then partially filled and
// must be discarded.
func (p *PDB) Generate(ctx context.Context, optFns ...Option) error {
	o := applyOptions(optFns)
	aux := p.aux

	frontier := roaring64.New()
	for _, g := range aux.Goals() {
		p.Update(g, 0)
		frontier.Add(aux.Offset(g))
	}

	o.logger.Info("generating pattern database",
		"tileset", aux.Tileset().String(),
		"entries", aux.TotalEntries(),
		"jobs", o.jobs)

	limiter := rate.NewLimiter(rate.Every(o.progressInterval), 1)

	filled := frontier.GetCardinality()
	for d := 0; !frontier.IsEmpty(); d++ {
		if d >= int(MaxDist) {
			return ErrDistanceOverflow
		}

		next, err := p.expandRound(ctx, frontier, byte(d), o.jobs)
		if err != nil {
			return err
		}

		filled += next.GetCardinality()
		if limiter.Allow() {
			o.logger.Info("round complete",
				"distance", d,
				"frontier", next.GetCardinality(),
				"filled", filled)
		}
		frontier = next
	}

	o.logger.Info("generation complete",
		"filled", filled,
		"entries", aux.TotalEntries())

	return nil
}

// expandRound expands every frontier index at distance d across jobs
// workers. Workers own disjoint map-rank ranges, so within a round no two
// workers read the same frontier entry; successor writes contend only
// through compare-and-swap. Returns the next frontier.
func (p *PDB) expandRound(ctx context.Context, frontier *roaring64.Bitmap, d byte, jobs int) (*roaring64.Bitmap, error) {
	aux := p.aux
	bounds := p.rankBounds(jobs)
	locals := make([]*roaring64.Bitmap, jobs)

	g, ctx := errgroup.WithContext(ctx)
	for j := 0; j < jobs; j++ {
		g.Go(func() error {
			lo, hi := bounds[j], bounds[j+1]
			if lo >= hi {
				return nil
			}

			local := roaring64.New()
			locals[j] = local

			end := aux.RankOffset(hi)
			it := frontier.Iterator()
			it.AdvanceIfNeeded(aux.RankOffset(lo))

			r := lo
			for n := 0; it.HasNext(); n++ {
				off := it.Next()
				if off >= end {
					break
				}
				for aux.RankOffset(r+1) <= off {
					r++
				}

				rel := off - aux.RankOffset(r)
				eqc := uint64(aux.EqCount(uint32(r)))
				idx := index.Index{
					MapRank: uint32(r),
					Perm:    uint32(rel / eqc),
					Eq:      uint8(rel % eqc),
				}

				for succ := range aux.Successors(idx) {
					if p.CompareAndSwap(succ, Unreached, d+1) {
						local.Add(aux.Offset(succ))
					}
				}

				if n&4095 == 4095 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
			}
			return nil
		})
	}

	// Round barrier.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	next := roaring64.New()
	for _, local := range locals {
		if local != nil {
			next.Or(local)
		}
	}
	return next, nil
}

// rankBounds splits the map ranks into jobs contiguous ranges of roughly
// equal entry count.
func (p *PDB) rankBounds(jobs int) []uint64 {
	aux := p.aux
	numRanks := aux.NumRanks()
	perJob := aux.TotalEntries() / uint64(jobs)

	bounds := make([]uint64, jobs+1)
	bounds[jobs] = numRanks
	for j := 1; j < jobs; j++ {
		target := perJob * uint64(j)
		bounds[j] = uint64(sort.Search(int(numRanks), func(r int) bool {
			return aux.RankOffset(uint64(r)) >= target
		}))
	}
	return bounds
}
