// Package patterndb builds and serves pattern databases for the 24-puzzle.
//
// A pattern database (PDB) maps the index of a partial puzzle configuration
// (see package index) to the minimal number of moves needed to bring the
// tracked tiles home. Tables are filled by a round-synchronous parallel
// breadth-first search over the index space; all concurrent mutation goes
// through atomic byte operations, never locks.
//
// Quick start:
//
//	ts, _ := tileset.Parse("0,1,2,5,6")
//	pdb, err := patterndb.Allocate(ts)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := pdb.Generate(ctx, patterndb.WithJobs(8)); err != nil {
//		log.Fatal(err)
//	}
//	if err := patterndb.SaveFile("0,1,2,5,6.pdb", pdb); err != nil {
//		log.Fatal(err)
//	}
//
// Stored tables can be read back with Load/LoadFile, memory-mapped with
// Mmap for lookups without heap cost, or fetched from remote storage with
// LoadBlob. See package frontier for the external-memory enumeration of the
// full configuration space.
package patterndb
