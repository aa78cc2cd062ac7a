// Package search recovers cipher keys by scoring trial decryptions.
//
// Two engines walk a cipher.KeySpace. BruteForce enumerates every key and is
// exact, but only tractable for small spaces such as Caesar or affine.
// HillClimb is a greedy local search with restarts for spaces too large to
// enumerate. Both feed every trial into a Frontier that keeps the best N
// distinct keys.
//
// A search run is single-threaded and owns its Frontier and random source.
// Parallel runs independent climbs concurrently and merges their frontiers
// once all have finished.
//
// Usage:
//
//	space, _ := cipher.NewVigenereSpace(5)
//	out, err := search.HillClimb(ctx, ciphertext, space, search.HillClimbOptions{
//		Options:   search.Options{Results: 10, Scorer: scorer},
//		StopAfter: 1000,
//		Restarts:  5,
//		Seed:      42,
//	})
//	best, _ := out.Frontier.Best()
package search

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	mrand "math/rand/v2"
	"time"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/cipher"
	"github.com/64/kaiser/internal/score"
)

// Search errors
var (
	// ErrZeroResults indicates a result count below one.
	ErrZeroResults = errors.New("search: result count must be at least 1")

	// ErrZeroStopAfter indicates a hill climb stagnation limit below one.
	ErrZeroStopAfter = errors.New("search: stop-after must be at least 1")

	// ErrNegativeRestarts indicates a negative restart count.
	ErrNegativeRestarts = errors.New("search: restarts must not be negative")

	// ErrNoScorer indicates options without a Scorer.
	ErrNoScorer = errors.New("search: scorer is required")

	// ErrZeroWorkers indicates a parallel run with fewer than one worker.
	ErrZeroWorkers = errors.New("search: workers must be at least 1")
)

// Engine names used in logs and metric labels.
const (
	EngineBrute     = "brute"
	EngineHillClimb = "hillclimb"
)

// cancelCheckInterval is how many evaluations pass between context checks.
const cancelCheckInterval = 4096

// Options are shared by every engine.
type Options struct {
	// Results is the Frontier capacity.
	Results int
	// Scorer rates trial decryptions.
	Scorer *score.Scorer
	// Metrics, if set, receives run counters.
	Metrics *Metrics
	// Logger, if set, receives run start and finish events at debug level.
	Logger *slog.Logger
}

func (o Options) validate() error {
	if o.Results < 1 {
		return ErrZeroResults
	}
	if o.Scorer == nil {
		return ErrNoScorer
	}
	return nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Outcome is what a finished search run produced.
type Outcome[K cipher.Key[K]] struct {
	Frontier  *Frontier[K]
	Evaluated int
	Climbs    int
	Elapsed   time.Duration
}

// run carries the state of one search over one ciphertext.
type run[K cipher.Key[K]] struct {
	ctx        context.Context
	engine     string
	ciphertext *alphabet.Buffer
	scratch    *alphabet.Buffer
	scorer     *score.Scorer
	frontier   *Frontier[K]
	evaluated  int
	inserted   int
	climbs     int
	started    time.Time
	opts       Options
}

func newRun[K cipher.Key[K]](ctx context.Context, engine string, ciphertext *alphabet.Buffer, opts Options) (*run[K], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	frontier, err := NewFrontier[K](opts.Results)
	if err != nil {
		return nil, err
	}
	return &run[K]{
		ctx:        ctx,
		engine:     engine,
		ciphertext: ciphertext,
		scratch:    ciphertext.Clone(),
		scorer:     opts.Scorer,
		frontier:   frontier,
		started:    time.Now(),
		opts:       opts,
	}, nil
}

// evaluate decrypts the ciphertext with key, scores it and offers it to the
// frontier. The plaintext is only copied when the frontier would keep it.
func (r *run[K]) evaluate(key K) score.Score {
	r.scratch.CopyFrom(r.ciphertext)
	key.Decrypt(r.scratch)
	s := r.scorer.Score(r.scratch)
	r.evaluated++
	if r.frontier.Admits(s) && r.frontier.Insert(r.scratch.Clone(), key, s) {
		r.inserted++
	}
	return s
}

// cancelled polls the context every cancelCheckInterval evaluations.
func (r *run[K]) cancelled() error {
	if r.evaluated%cancelCheckInterval != 0 {
		return nil
	}
	return r.ctx.Err()
}

func (r *run[K]) finish(err error) (Outcome[K], error) {
	elapsed := time.Since(r.started)
	r.opts.Metrics.observeRun(r.engine, r.evaluated, r.inserted, elapsed)
	attrs := []any{
		slog.String("engine", r.engine),
		slog.Int("evaluated", r.evaluated),
		slog.Int("kept", r.frontier.Len()),
		slog.Duration("elapsed", elapsed),
	}
	if best, ok := r.frontier.Best(); ok {
		attrs = append(attrs, slog.String("best_key", best.Key.String()), slog.Float64("best_score", float64(best.Score)))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	r.opts.logger().Debug("search finished", attrs...)

	out := Outcome[K]{Frontier: r.frontier, Evaluated: r.evaluated, Climbs: r.climbs, Elapsed: elapsed}
	if err != nil {
		return out, fmt.Errorf("%s search interrupted after %d candidates: %w", r.engine, r.evaluated, err)
	}
	return out, nil
}

// NewRand returns a PCG source for seed. A zero seed draws one from the
// operating system, so the run cannot be reproduced.
func NewRand(seed uint64) *mrand.Rand {
	if seed == 0 {
		seed = EntropySeed()
	}
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// EntropySeed draws a non-zero seed from the operating system.
func EntropySeed() uint64 {
	var b [8]byte
	for {
		if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
			panic(fmt.Sprintf("search: reading system entropy: %v", err))
		}
		if s := binary.LittleEndian.Uint64(b[:]); s != 0 {
			return s
		}
	}
}
