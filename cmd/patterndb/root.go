package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/patterndb"
)

type rootFlags struct {
	jobs    int
	verbose bool
}

func (f *rootFlags) logger() *patterndb.Logger {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	return patterndb.NewTextLogger(level)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "patterndb",
		Short:         "24-puzzle pattern databases and configuration-space enumeration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().IntVarP(&flags.jobs, "jobs", "j", 0, "parallel workers (default GOMAXPROCS)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newGenCmd(flags),
		newVerifyCmd(flags),
		newHistogramCmd(flags),
		newReduceCmd(flags),
		newDistCmd(flags),
	)

	return root
}
