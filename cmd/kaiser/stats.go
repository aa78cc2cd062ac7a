package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/quadgram"
	"github.com/64/kaiser/internal/score"
	"github.com/64/kaiser/internal/stats"
)

func (a *app) iocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ioc [file]",
		Short: "Print the normalised index of coincidence",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, _, err := a.readBuffer(args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, stats.IndexOfCoincidence(buf))
			return err
		},
	}
}

func (a *app) chiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chi [file]",
		Short: "Print the chi-squared distance from English letter frequencies",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, _, err := a.readBuffer(args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, stats.ChiSquared(buf))
			return err
		},
	}
}

func (a *app) freqsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "freqs [file]",
		Short: "Print the count of every letter",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, _, err := a.readBuffer(args)
			if err != nil {
				return err
			}
			var sb strings.Builder
			for i, n := range stats.LetterFrequencies(buf) {
				fmt.Fprintf(&sb, "%s: %d\n", alphabet.New(i), n)
			}
			_, err = fmt.Fprint(a.stdout, sb.String())
			return err
		},
	}
}

func (a *app) trimCmd() *cobra.Command {
	var offset, stride int
	cmd := &cobra.Command{
		Use:   "trim [file]",
		Short: "Print every stride-th letter starting at offset",
		Long: `Print the letters at positions offset, offset+stride, offset+2*stride
and so on, in upper case with everything else removed. With a stride equal
to a Vigenère key length this isolates one Caesar-shifted column.`,
		Args: rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, _, err := a.readBuffer(args)
			if err != nil {
				return err
			}
			view, err := buf.View(offset, stride)
			if err != nil {
				return err
			}
			out := make([]byte, 0, view.Len()+1)
			for _, s := range view.All() {
				out = append(out, s.Upper())
			}
			out = append(out, '\n')
			_, err = a.stdout.Write(out)
			return err
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "position of the first letter")
	cmd.Flags().IntVar(&stride, "stride", 1, "distance between letters")
	return cmd
}

func (a *app) scoreCmd() *cobra.Command {
	var method, table string
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Print how English-like the text is, higher is better",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("method") {
				method = a.cfg.Score.Method
			}
			if !cmd.Flags().Changed("quadgram-table") {
				table = a.cfg.Score.QuadgramTable
			}
			scorer, err := a.scorer(method, table)
			if err != nil {
				return err
			}
			buf, _, err := a.readBuffer(args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, scorer.Score(buf))
			return err
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "scoring method: quadgrams, chi or ioc (default from config)")
	cmd.Flags().StringVar(&table, "quadgram-table", "", "binary quadgram table (default: builtin)")
	return cmd
}

// scorer builds a Scorer for the named method. The quadgram table is only
// loaded when the method needs it.
func (a *app) scorer(method, tablePath string) (*score.Scorer, error) {
	m, err := score.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	var table *quadgram.Table
	if m == score.Quadgrams {
		if table, err = a.loadTable(tablePath); err != nil {
			return nil, err
		}
	}
	return score.NewScorer(m, table)
}
