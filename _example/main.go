package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/hupe1980/patterndb"
	"github.com/hupe1980/patterndb/puzzle"
	"github.com/hupe1980/patterndb/tileset"
)

func main() {
	ts, err := tileset.Parse("0,1,2,5,6")
	if err != nil {
		log.Fatal(err)
	}

	pdb, err := patterndb.Allocate(ts)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- Generate ---")
	fmt.Println("Tileset:", ts)
	fmt.Println("Entries:", pdb.Aux().TotalEntries())

	start := time.Now()

	err = pdb.Generate(context.Background(),
		patterndb.WithJobs(8),
		patterndb.WithLogger(patterndb.NewTextLogger(slog.LevelInfo)),
		patterndb.WithProgressInterval(time.Second))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Seconds: %.2f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Histogram ---")
	for d, n := range pdb.Histogram() {
		if n > 0 {
			fmt.Printf("%3d: %d\n", d, n)
		}
	}
	fmt.Println()

	fmt.Println("--- Lookup ---")
	p := puzzle.Solved()
	for _, dest := range []int{1, 2, 7, 6} {
		p.Move(dest)
	}
	fmt.Println("Distance:", pdb.Lookup(pdb.Aux().Rank(&p)))

	if err := patterndb.SaveFile("0,1,2,5,6.pdb", pdb); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Saved to 0,1,2,5,6.pdb")
}
