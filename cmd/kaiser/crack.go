package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/config"
	"github.com/64/kaiser/internal/fsutil"
	"github.com/64/kaiser/internal/logging"
	"github.com/64/kaiser/internal/registry"
	"github.com/64/kaiser/internal/report"
	"github.com/64/kaiser/internal/score"
	"github.com/64/kaiser/internal/search"
	"github.com/64/kaiser/internal/store"
	"github.com/64/kaiser/internal/watcher"
)

// watchDebounce is how long a ciphertext file must be quiet before a
// watched crack re-runs.
const watchDebounce = 250 * time.Millisecond

type crackFlags struct {
	engine        string
	method        string
	quadgramTable string
	metricsFile   string
	shape         int
	results       int
	stopAfter     int
	restarts      int
	parallel      int
	seed          uint64
	json          bool
	watch         bool
}

// apply copies every flag set on the command line over cfg.
func (f *crackFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("engine") {
		cfg.Search.Engine = f.engine
	}
	if changed("results") {
		cfg.Search.Results = f.results
	}
	if changed("stop-after") {
		cfg.Search.StopAfter = f.stopAfter
	}
	if changed("restarts") {
		cfg.Search.Restarts = f.restarts
	}
	if changed("seed") {
		cfg.Search.Seed = f.seed
	}
	if changed("parallel") {
		cfg.Search.Parallel = f.parallel
	}
	if changed("method") {
		cfg.Score.Method = f.method
	}
	if changed("quadgram-table") {
		cfg.Score.QuadgramTable = f.quadgramTable
	}
	if changed("metrics-file") {
		cfg.Metrics.File = f.metricsFile
	}
}

func (a *app) crackCmd() *cobra.Command {
	var f crackFlags
	cmd := &cobra.Command{
		Use:   "crack <cipher> [file]",
		Short: "Recover the key of a ciphertext",
		Long: `Recover the key of a ciphertext by scoring trial decryptions.

The brute engine tries every key and is exact; it is the default for
caesar and affine. The hillclimb engine starts from random keys and keeps
any small change that scores better; it is the default for the rest.
Ciphers with a shape (the vigenere key length, the transposition column
count) search one shape per run, chosen with --shape.

The best --results candidates are printed best first.`,
		Args: rangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.crack(cmd, &f, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.engine, "engine", "", "search engine: brute or hillclimb (default depends on the cipher)")
	flags.IntVar(&f.shape, "shape", 0, "key length or column count (default depends on the cipher)")
	flags.IntVarP(&f.results, "results", "n", 0, "number of candidates to keep (default from config)")
	flags.StringVar(&f.method, "method", "", "scoring method: quadgrams, chi or ioc (default from config)")
	flags.IntVar(&f.stopAfter, "stop-after", 0, "end a climb after this many tweaks without improvement (default from config)")
	flags.IntVar(&f.restarts, "restarts", 0, "extra climbs from fresh random keys (default from config)")
	flags.Uint64Var(&f.seed, "seed", 0, "random seed, 0 draws one from the system")
	flags.IntVarP(&f.parallel, "parallel", "p", 0, "independent climbs run at once (default from config)")
	flags.StringVar(&f.quadgramTable, "quadgram-table", "", "binary quadgram table (default: builtin)")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics here after each crack")
	flags.BoolVar(&f.json, "json", false, "print a JSON report")
	flags.BoolVarP(&f.watch, "watch", "w", false, "crack again whenever the file changes")
	return cmd
}

// crackJob is everything a crack needs besides the ciphertext.
type crackJob struct {
	entry   registry.Entry
	cfg     *config.Config
	shape   int
	method  score.Method
	scorer  *score.Scorer
	metrics *search.Metrics
	gather  prometheus.Gatherer
	store   *store.Store
	json    bool
}

func (a *app) crack(cmd *cobra.Command, f *crackFlags, args []string) error {
	cfg := a.cfg.Clone()
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	entry, err := registry.Lookup(args[0])
	if err != nil {
		return err
	}
	if f.shape < 0 {
		return usageErrorf("--shape must not be negative")
	}
	if f.shape > 0 && entry.ShapeHelp == "" {
		return usageErrorf("%s has no shape", entry.Name)
	}
	if f.watch && (len(args) < 2 || args[1] == stdinSource) {
		return usageErrorf("--watch needs a file argument")
	}

	scorer, err := a.scorer(cfg.Score.Method, cfg.Score.QuadgramTable)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	job := &crackJob{
		entry:   entry,
		cfg:     cfg,
		shape:   f.shape,
		method:  scorer.Method(),
		scorer:  scorer,
		metrics: search.NewMetrics(reg),
		gather:  reg,
		json:    f.json,
	}
	if job.shape == 0 {
		job.shape = entry.DefaultShape
	}

	if cfg.Storage.Enabled {
		st, err := store.Open(cfg.Storage.Path, time.Duration(cfg.Storage.BusyTimeoutMs)*time.Millisecond)
		if err != nil {
			return err
		}
		defer st.Close()
		job.store = st
	}

	ctx := cmd.Context()
	files := args[1:]
	text, source, err := a.readInput(files)
	if err != nil {
		return err
	}
	if err := a.crackOnce(ctx, job, text, source); err != nil || !f.watch {
		return err
	}

	w, err := watcher.New([]string{source}, watchDebounce)
	if err != nil {
		return err
	}
	log := a.logger.WithComponent("watch")
	log.Info("watching for changes", "path", source)
	return w.Run(ctx, func(ev watcher.Event) error {
		text, _, err := a.readInput(files)
		if err == nil {
			fmt.Fprintf(a.stderr, "kaiser: %s changed, cracking again\n", ev.Path)
			err = a.crackOnce(ctx, job, text, source)
		}
		if err != nil && ctx.Err() == nil {
			// A bad edit should not end the watch.
			log.Error("crack failed", "path", ev.Path, "error", err)
			fmt.Fprintf(a.stderr, "kaiser: %v\n", err)
		}
		return nil
	}, func(err error) {
		log.Warn("watch error", "error", err)
	})
}

// crackOnce cracks one ciphertext, prints the frontier and records the run.
// An interrupted crack still prints what it found before returning the
// error.
func (a *app) crackOnce(ctx context.Context, job *crackJob, text, source string) error {
	buf, err := alphabet.FromText(text)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	runID := store.NewRunID()
	log := a.logger.WithRunID(runID.String())

	// Draw the seed here so that the report and history can reproduce the run.
	seed := job.cfg.Search.Seed
	if seed == 0 {
		seed = search.EntropySeed()
	}

	started := time.Now()
	out, crackErr := job.entry.Crack(ctx, registry.Request{
		Ciphertext: buf,
		Engine:     job.cfg.Search.Engine,
		Shape:      job.shape,
		Workers:    job.cfg.Search.Parallel,
		HillClimbOptions: search.HillClimbOptions{
			Options: search.Options{
				Results: job.cfg.Search.Results,
				Scorer:  job.scorer,
				Metrics: job.metrics,
				Logger:  log.Logger,
			},
			StopAfter: job.cfg.Search.StopAfter,
			Restarts:  job.cfg.Search.Restarts,
			Seed:      seed,
		},
	})
	if crackErr != nil && len(out.Candidates) == 0 {
		return crackErr
	}

	log.Info("crack finished",
		"cipher", out.Cipher,
		"engine", out.Engine,
		"evaluated", out.Evaluated,
		"elapsed", out.Elapsed,
	)

	meta := report.Meta{
		RunID:      runID,
		Source:     source,
		Method:     job.method.String(),
		Shape:      job.shape,
		Results:    job.cfg.Search.Results,
		Seed:       seed,
		Workers:    max(job.cfg.Search.Parallel, 1),
		Ciphertext: buf,
		StartedAt:  started,
	}
	if job.json {
		err = report.New(out, meta).Write(a.stdout)
	} else {
		err = printCandidates(a.stdout, out)
		if len(out.Candidates) == 0 {
			fmt.Fprintf(a.stderr, "kaiser: no candidate could be scored, %d letters may be too few\n", buf.Len())
		}
	}
	if err != nil {
		return err
	}

	if crackErr != nil {
		return crackErr
	}
	return errors.Join(
		a.recordRun(ctx, job, runID, out, meta, log),
		a.writeMetrics(job),
	)
}

// printCandidates writes the frontier as an aligned table, best first.
func printCandidates(w io.Writer, out registry.Outcome) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tKEY\tPLAINTEXT")
	for _, c := range out.Candidates {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.Rank, c.Score, c.Key, oneLine(c.Plaintext.Render()))
	}
	return tw.Flush()
}

// recordRun saves a finished run to the history database, if one is open.
func (a *app) recordRun(ctx context.Context, job *crackJob, id uuid.UUID, out registry.Outcome, meta report.Meta, log *logging.Logger) error {
	if job.store == nil {
		return nil
	}
	run := &store.Run{
		ID:             id,
		Source:         meta.Source,
		Cipher:         out.Cipher,
		Engine:         out.Engine,
		Method:         meta.Method,
		Shape:          meta.Shape,
		Seed:           meta.Seed,
		Capacity:       meta.Results,
		CiphertextHash: report.CiphertextSum(meta.Ciphertext),
		CiphertextLen:  meta.Ciphertext.Len(),
		Evaluated:      out.Evaluated,
		Climbs:         out.Climbs,
		StartedAt:      meta.StartedAt,
		Elapsed:        out.Elapsed,
	}
	results := make([]store.Result, 0, len(out.Candidates))
	for _, c := range out.Candidates {
		results = append(results, store.Result{
			Rank:      c.Rank,
			Key:       c.Key,
			Score:     float64(c.Score),
			Plaintext: c.Plaintext.Render(),
		})
	}
	if err := job.store.SaveRun(ctx, run, results); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	log.Debug("run recorded", "path", job.cfg.Storage.Path)
	return nil
}

// writeMetrics replaces the metrics file with the current counters.
func (a *app) writeMetrics(job *crackJob) error {
	path := job.cfg.Metrics.File
	if path == "" {
		return nil
	}
	families, err := job.gather.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	err = fsutil.WriteFunc(path, fsutil.PermFile, func(w io.Writer) error {
		return encodeMetrics(w, families)
	})
	if err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// encodeMetrics writes families in the Prometheus text format.
func encodeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
