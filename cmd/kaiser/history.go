package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/64/kaiser/internal/store"
)

// openHistory opens the run history. It returns nil without error when no
// database has been created yet.
func (a *app) openHistory() (*store.Store, error) {
	path := a.cfg.Storage.Path
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return store.Open(path, time.Duration(a.cfg.Storage.BusyTimeoutMs)*time.Millisecond)
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded crack runs, newest first",
		Long: `List recorded crack runs, newest first.

Runs are recorded when storage.enabled is set in the configuration or
KAISER_STORAGE_PATH is set.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openHistory()
			if err != nil {
				return err
			}
			if st == nil {
				fmt.Fprintln(a.stdout, "No runs recorded.")
				return nil
			}
			defer st.Close()

			runs, err := st.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(a.stdout, "No runs recorded.")
				return nil
			}

			fmt.Fprintf(a.stdout, "%-8s  %-19s  %-13s  %-9s  %10s  %12s  %s\n",
				"RUN", "STARTED", "CIPHER", "ENGINE", "EVALUATED", "BEST SCORE", "BEST KEY")
			fmt.Fprintln(a.stdout, strings.Repeat("-", 96))
			for _, r := range runs {
				bestScore, bestKey := "-", "-"
				if r.Best != nil {
					bestScore = fmt.Sprintf("%.4f", r.Best.Score)
					bestKey = r.Best.Key
				}
				fmt.Fprintf(a.stdout, "%-8s  %-19s  %-13s  %-9s  %10d  %12s  %s\n",
					r.ID.String()[:8],
					r.StartedAt.Local().Format(time.DateTime),
					r.Cipher, r.Engine, r.Evaluated, bestScore, bestKey)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "runs to list, 0 for all")
	cmd.AddCommand(a.historyShowCmd(), a.historyPruneCmd())
	return cmd
}

func (a *app) historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a recorded run and its candidates",
		Long: `Print a recorded run and its candidates. Any unique prefix of the
run ID is accepted.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openHistory()
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("%w: %q", store.ErrNotFound, args[0])
			}
			defer st.Close()

			ctx := cmd.Context()
			id, err := st.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			run, results, err := st.Run(ctx, id)
			switch {
			case errors.Is(err, store.ErrCorrupted):
				fmt.Fprintf(a.stderr, "kaiser: warning: run %s does not match its digest, it may have been modified\n", id)
			case err != nil:
				return err
			}

			w := a.stdout
			fmt.Fprintf(w, "Run:         %s\n", run.ID)
			fmt.Fprintf(w, "Started:     %s\n", run.StartedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(w, "Source:      %s\n", run.Source)
			fmt.Fprintf(w, "Cipher:      %s\n", run.Cipher)
			if run.Shape > 0 {
				fmt.Fprintf(w, "Shape:       %d\n", run.Shape)
			}
			fmt.Fprintf(w, "Engine:      %s\n", run.Engine)
			fmt.Fprintf(w, "Method:      %s\n", run.Method)
			fmt.Fprintf(w, "Seed:        %d\n", run.Seed)
			fmt.Fprintf(w, "Ciphertext:  %d letters, sha256 %s\n", run.CiphertextLen, hex.EncodeToString(run.CiphertextHash[:]))
			fmt.Fprintf(w, "Evaluated:   %d in %s", run.Evaluated, run.Elapsed.Round(time.Millisecond))
			if run.Climbs > 0 {
				fmt.Fprintf(w, " over %d climbs", run.Climbs)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w)

			for _, r := range results {
				fmt.Fprintf(w, "%3d  %12.4f  %s\n", r.Rank, r.Score, r.Key)
				fmt.Fprintf(w, "     %s\n", oneLine(r.Plaintext))
			}
			return nil
		},
	}
}

func (a *app) historyPruneCmd() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return usageErrorf("--keep must not be negative")
			}
			st, err := a.openHistory()
			if err != nil {
				return err
			}
			if st == nil {
				fmt.Fprintln(a.stdout, "Removed 0 runs.")
				return nil
			}
			defer st.Close()

			n, err := st.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			a.logger.Info("history pruned", "removed", n, "kept", keep)
			fmt.Fprintf(a.stdout, "Removed %d runs.\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 100, "runs to keep")
	return cmd
}
