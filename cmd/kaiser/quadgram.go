package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/64/kaiser/internal/fsutil"
	"github.com/64/kaiser/internal/quadgram"
)

// loadTable reads a binary quadgram table, or trains the builtin one when
// path is empty.
func (a *app) loadTable(path string) (*quadgram.Table, error) {
	if path == "" {
		return quadgram.Builtin()
	}
	data, err := fsutil.ReadFile(path, quadgram.EncodedSize+1)
	if err != nil {
		return nil, fmt.Errorf("read quadgram table: %w", err)
	}
	t, err := quadgram.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (a *app) quadgramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quadgram",
		Short: "Build and inspect quadgram tables",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(a.quadgramTrainCmd(), a.quadgramInfoCmd())
	return cmd
}

func (a *app) quadgramTrainCmd() *cobra.Command {
	var (
		output string
		counts bool
	)
	cmd := &cobra.Command{
		Use:   "train [corpus]",
		Short: "Build a binary quadgram table from English text",
		Long: `Build a binary quadgram table from English text.

The corpus is any text; its letters are read as one stream. With --counts
it is instead a list of lines such as "TION 13168375".`,
		Args: rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return usageErrorf("train needs --output")
			}
			text, source, err := a.readInput(args)
			if err != nil {
				return err
			}

			build := quadgram.Train
			if counts {
				build = quadgram.ReadCounts
			}
			table, err := build(strings.NewReader(text))
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}

			err = fsutil.WriteFunc(output, fsutil.PermFile, func(w io.Writer) error {
				_, err := table.WriteTo(w)
				return err
			})
			if err != nil {
				return err
			}
			a.logger.Info("quadgram table written", "path", output, "source", source)

			s := table.Summarize()
			fmt.Fprintf(a.stdout, "Wrote %s: %d of %d quadgrams observed\n", output, s.Observed, quadgram.Entries)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "table file to write")
	cmd.Flags().BoolVar(&counts, "counts", false, "read quadgram count lines instead of text")
	return cmd
}

func (a *app) quadgramInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [table]",
		Short: "Summarise a binary quadgram table, or the builtin one",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			table, err := a.loadTable(path)
			if err != nil {
				return err
			}
			if path == "" {
				path = "builtin"
			}

			s := table.Summarize()
			fmt.Fprintf(a.stdout, "Table:     %s\n", path)
			fmt.Fprintf(a.stdout, "Observed:  %d of %d\n", s.Observed, quadgram.Entries)
			fmt.Fprintf(a.stdout, "Min:       %.4f\n", s.Min)
			fmt.Fprintf(a.stdout, "Max:       %.4f\n", s.Max)
			fmt.Fprintf(a.stdout, "Mean:      %.4f\n", s.Mean)
			for _, q := range []string{"TION", "THER", "QXZJ"} {
				v, _ := table.Lookup(q)
				fmt.Fprintf(a.stdout, "%s:      %.4f\n", q, v)
			}
			return nil
		},
	}
}
