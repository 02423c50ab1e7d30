package patterndb

// Histogram counts the entries at each distance in a single pass. A nonzero
// counts[Unreached] signals an incomplete (or disconnected) table. Must not
// run concurrently with mutation.
func (p *PDB) Histogram() (counts [HistogramLen]uint64) {
	for _, t := range p.tables {
		for _, d := range t.Bytes() {
			counts[d]++
		}
	}
	return counts
}

// Complete reports whether every entry holds a finite distance.
func (p *PDB) Complete() bool {
	for _, t := range p.tables {
		for _, d := range t.Bytes() {
			if d == Unreached {
				return false
			}
		}
	}
	return true
}
