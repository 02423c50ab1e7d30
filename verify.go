package patterndb

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/patterndb/index"
)

// Verify checks the whole table against the one-step move-distance
// relation: every finite entry's neighbors are finite and within ±1, every
// non-goal finite entry has a neighbor exactly one move closer, and the
// goal indices hold distance 0. The first violation is returned as an
// *ErrInconsistent; the table itself is left untouched.
func (p *PDB) Verify(ctx context.Context, optFns ...Option) error {
	o := applyOptions(optFns)
	aux := p.aux

	for _, g := range aux.Goals() {
		if d := p.Lookup(g); d != 0 {
			return &ErrInconsistent{Index: g, Dist: d, Reason: "goal index not at distance 0"}
		}
	}

	bounds := p.rankBounds(o.jobs)

	g, ctx := errgroup.WithContext(ctx)
	for j := 0; j < o.jobs; j++ {
		g.Go(func() error {
			n := 0
			for r := bounds[j]; r < bounds[j+1]; r++ {
				eqc := uint64(aux.EqCount(uint32(r)))
				size := aux.TableSize(uint32(r))
				for rel := uint64(0); rel < size; rel++ {
					idx := index.Index{
						MapRank: uint32(r),
						Perm:    uint32(rel / eqc),
						Eq:      uint8(rel % eqc),
					}
					if err := p.verifyEntry(idx); err != nil {
						return err
					}

					if n++; n&4095 == 0 {
						select {
						case <-ctx.Done():
							return ctx.Err()
						default:
						}
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	o.logger.Info("table verified",
		"tileset", aux.Tileset().String(),
		"entries", aux.TotalEntries())

	return nil
}

func (p *PDB) verifyEntry(idx index.Index) error {
	d := p.Lookup(idx)
	if d == Unreached {
		// Unreached entries are legal in a disconnected index space; a
		// finite entry next to one is caught from the finite side.
		return nil
	}

	hasCloser := d == 0
	for succ := range p.aux.Successors(idx) {
		dn := p.Lookup(succ)
		if dn == Unreached {
			return &ErrInconsistent{Index: idx, Dist: d, Neighbor: dn,
				Reason: "finite entry has unreached neighbor"}
		}
		diff := int(d) - int(dn)
		if diff < -1 || diff > 1 {
			return &ErrInconsistent{Index: idx, Dist: d, Neighbor: dn,
				Reason: "neighbor distances differ by more than one"}
		}
		if diff == 1 {
			hasCloser = true
		}
	}
	if !hasCloser {
		return &ErrInconsistent{Index: idx, Dist: d,
			Reason: "no neighbor one move closer to the goal"}
	}
	return nil
}
