package patterndb

import (
	"runtime"
	"time"
)

type options struct {
	jobs             int
	logger           *Logger
	progressInterval time.Duration
}

// Option configures Generate and Verify.
type Option func(*options)

// WithJobs sets the number of parallel workers. Values are clamped to
// 1..MaxJobs; the default is GOMAXPROCS. The count is fixed for the whole
// call, there is no dynamic resizing.
func WithJobs(n int) Option {
	return func(o *options) {
		switch {
		case n < 1:
			o.jobs = 1
		case n > MaxJobs:
			o.jobs = MaxJobs
		default:
			o.jobs = n
		}
	}
}

// WithLogger configures structured logging. Pass nil to disable.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithProgressInterval bounds how often per-round progress is logged.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.progressInterval = d
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		jobs:             min(runtime.GOMAXPROCS(0), MaxJobs),
		logger:           NoopLogger(),
		progressInterval: 10 * time.Second,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
