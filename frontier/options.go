package frontier

import (
	"log/slog"
	"math"
	"runtime"
	"time"
)

// Options configures an Engine. Configure through the option functions
// passed to New, in the style of a write-ahead log's options block.
type Options struct {
	// Limit is the largest depth to enumerate. The run also stops early
	// when a frontier comes up empty.
	Limit int

	// Compress enables lz4 frame compression of all frontier and radix
	// files. Frontier data is highly regular and compresses well; on
	// spinning or network disks this trades idle CPU for I/O.
	Compress bool

	// SampleFile, when non-empty, receives a uniform sample of each
	// depth's frontier for downstream statistical estimation.
	SampleFile string

	// SampleSize is the number of records sampled per depth.
	SampleSize uint64

	// Seed makes sampling reproducible: equal seeds and sample sizes
	// produce identical sample streams.
	Seed uint64

	// Jobs bounds the number of final buckets coalesced in parallel.
	Jobs int

	// Logger receives progress output. Nil disables logging.
	Logger *slog.Logger

	// ProgressInterval bounds how often expansion progress is logged.
	ProgressInterval time.Duration
}

func defaultOptions() Options {
	return Options{
		Limit:            math.MaxInt,
		SampleSize:       1 << 20,
		Jobs:             runtime.GOMAXPROCS(0),
		ProgressInterval: 10 * time.Second,
	}
}
