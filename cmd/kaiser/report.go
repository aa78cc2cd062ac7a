package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/64/kaiser/internal/report"
)

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [file]",
		Short: "Check a JSON crack report and print it as text",
		Long: `Check a report written by 'kaiser crack --json' against the report
schema and print it in the same form as 'kaiser history show'.`,
		Args: rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, source, err := a.readInput(args)
			if err != nil {
				return err
			}
			rep, err := report.Read(strings.NewReader(text))
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}

			w := a.stdout
			fmt.Fprintf(w, "Run:         %s\n", rep.RunID)
			fmt.Fprintf(w, "Started:     %s\n", rep.Search.StartedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(w, "Source:      %s\n", rep.Ciphertext.Source)
			fmt.Fprintf(w, "Cipher:      %s\n", rep.Cipher)
			if rep.Shape > 0 {
				fmt.Fprintf(w, "Shape:       %d\n", rep.Shape)
			}
			fmt.Fprintf(w, "Engine:      %s\n", rep.Engine)
			fmt.Fprintf(w, "Method:      %s\n", rep.Method)
			fmt.Fprintf(w, "Seed:        %d\n", rep.Search.Seed)
			fmt.Fprintf(w, "Ciphertext:  %d letters, sha256 %s\n", rep.Ciphertext.Letters, rep.Ciphertext.SHA256)
			fmt.Fprintf(w, "Evaluated:   %d in %.3fms", rep.Search.Evaluated, rep.Search.ElapsedMS)
			if rep.Search.Climbs > 0 {
				fmt.Fprintf(w, " over %d climbs", rep.Search.Climbs)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w)

			for _, c := range rep.Candidates {
				fmt.Fprintf(w, "%3d  %12.4f  %s\n", c.Rank, c.Score, c.Key)
				fmt.Fprintf(w, "     %s\n", oneLine(c.Plaintext))
			}
			return nil
		},
	}
}
