package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/patterndb"
	"github.com/hupe1980/patterndb/tileset"
)

func (f *rootFlags) options() []patterndb.Option {
	opts := []patterndb.Option{patterndb.WithLogger(f.logger())}
	if f.jobs > 0 {
		opts = append(opts, patterndb.WithJobs(f.jobs))
	}
	return opts
}

func newGenCmd(flags *rootFlags) *cobra.Command {
	var tiles string

	cmd := &cobra.Command{
		Use:   "gen <output-file>",
		Short: "Generate a pattern database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := tileset.Parse(tiles)
			if err != nil {
				return err
			}

			pdb, err := patterndb.Allocate(ts)
			if err != nil {
				return err
			}
			if err := pdb.Generate(cmd.Context(), flags.options()...); err != nil {
				return err
			}
			return patterndb.SaveFile(args[0], pdb)
		},
	}

	cmd.Flags().StringVarP(&tiles, "tiles", "t", "", "tracked tiles, e.g. 0,1,2,5,6")
	_ = cmd.MarkFlagRequired("tiles")

	return cmd
}

func newVerifyCmd(flags *rootFlags) *cobra.Command {
	var tiles string

	cmd := &cobra.Command{
		Use:   "verify <pdb-file>",
		Short: "Check a pattern database against the move-distance relation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := tileset.Parse(tiles)
			if err != nil {
				return err
			}

			pdb, err := patterndb.LoadFile(args[0], ts)
			if err != nil {
				return err
			}
			return pdb.Verify(cmd.Context(), flags.options()...)
		},
	}

	cmd.Flags().StringVarP(&tiles, "tiles", "t", "", "tracked tiles, e.g. 0,1,2,5,6")
	_ = cmd.MarkFlagRequired("tiles")

	return cmd
}

func newHistogramCmd(_ *rootFlags) *cobra.Command {
	var tiles string

	cmd := &cobra.Command{
		Use:   "histogram <pdb-file>",
		Short: "Print the distance histogram of a pattern database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := tileset.Parse(tiles)
			if err != nil {
				return err
			}

			pdb, err := patterndb.LoadFile(args[0], ts)
			if err != nil {
				return err
			}

			counts := pdb.Histogram()
			w := bufio.NewWriter(cmd.OutOrStdout())
			var total uint64
			for d, n := range counts {
				if n == 0 {
					continue
				}
				total += n
				if d == int(patterndb.Unreached) {
					fmt.Fprintf(w, "  -: %18d\n", n)
					continue
				}
				fmt.Fprintf(w, "%3d: %18d\n", d, n)
			}
			fmt.Fprintf(w, "sum: %18d\n", total)
			if err := w.Flush(); err != nil {
				return err
			}
			if counts[patterndb.Unreached] != 0 {
				return fmt.Errorf("table incomplete: %d entries unreached", counts[patterndb.Unreached])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tiles, "tiles", "t", "", "tracked tiles, e.g. 0,1,2,5,6")
	_ = cmd.MarkFlagRequired("tiles")

	return cmd
}

func newReduceCmd(_ *rootFlags) *cobra.Command {
	var (
		tiles string
		bound uint8
	)

	cmd := &cobra.Command{
		Use:   "reduce <pdb-file> <output-file>",
		Short: "Write a bound-clamped, zstd-compressed copy of a pattern database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := tileset.Parse(tiles)
			if err != nil {
				return err
			}

			pdb, err := patterndb.LoadFile(args[0], ts)
			if err != nil {
				return err
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			w := bufio.NewWriter(f)
			if err := pdb.Reduce(w, patterndb.Clamp(bound)); err != nil {
				_ = f.Close()
				return err
			}
			if err := w.Flush(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&tiles, "tiles", "t", "", "tracked tiles, e.g. 0,1,2,5,6")
	cmd.Flags().Uint8VarP(&bound, "bound", "b", patterndb.MaxDist, "clamp distances at this bound")
	_ = cmd.MarkFlagRequired("tiles")

	return cmd
}
