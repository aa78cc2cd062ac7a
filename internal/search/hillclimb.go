package search

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/cipher"
)

// HillClimbOptions configure a HillClimb run.
type HillClimbOptions struct {
	Options

	// StopAfter ends a climb after this many consecutive neighbours failed
	// to improve on the current key.
	StopAfter int
	// Restarts is the number of extra climbs from fresh random keys after
	// the first one. All climbs feed the same Frontier.
	Restarts int
	// Seed seeds the random source. Zero seeds from system entropy.
	Seed uint64
}

func (o HillClimbOptions) validate() error {
	if err := o.Options.validate(); err != nil {
		return err
	}
	if o.StopAfter < 1 {
		return ErrZeroStopAfter
	}
	if o.Restarts < 0 {
		return ErrNegativeRestarts
	}
	return nil
}

// HillClimb runs 1+Restarts greedy climbs over space. Each climb starts from
// a random key and repeatedly tries a tweaked neighbour of the current key.
// Every neighbour is offered to the Frontier, but only one that scores
// strictly higher replaces the current key. A climb ends after StopAfter
// consecutive neighbours fail to improve.
//
// With a non-zero Seed the run is deterministic. There is no guarantee the
// best key is found.
func HillClimb[K cipher.Key[K]](ctx context.Context, ciphertext *alphabet.Buffer, space cipher.KeySpace[K], opts HillClimbOptions) (Outcome[K], error) {
	if err := opts.validate(); err != nil {
		return Outcome[K]{}, err
	}
	return hillClimb(ctx, ciphertext, space, opts, NewRand(opts.Seed))
}

func hillClimb[K cipher.Key[K]](ctx context.Context, ciphertext *alphabet.Buffer, space cipher.KeySpace[K], opts HillClimbOptions, rng *rand.Rand) (Outcome[K], error) {
	r, err := newRun[K](ctx, EngineHillClimb, ciphertext, opts.Options)
	if err != nil {
		return Outcome[K]{}, err
	}
	log := opts.logger()
	log.Debug("search started",
		slog.String("engine", EngineHillClimb),
		slog.String("method", opts.Scorer.Method().String()),
		slog.Int("results", opts.Results),
		slog.Int("stop_after", opts.StopAfter),
		slog.Int("restarts", opts.Restarts),
		slog.Int("symbols", ciphertext.Len()),
	)

	for climb := 0; climb <= opts.Restarts; climb++ {
		if climb > 0 {
			opts.Metrics.observeRestart()
		}
		r.climbs++

		parent := space.Random(rng)
		parentScore := r.evaluate(parent)
		for stagnant := 0; stagnant < opts.StopAfter; {
			child := space.Tweak(parent, rng)
			childScore := r.evaluate(child)
			if childScore > parentScore {
				parent, parentScore = child, childScore
				stagnant = 0
			} else {
				stagnant++
			}
			if err := r.cancelled(); err != nil {
				return r.finish(err)
			}
		}
		log.Debug("climb finished",
			slog.Int("climb", climb),
			slog.String("key", parent.String()),
			slog.Float64("score", float64(parentScore)),
		)
	}
	return r.finish(nil)
}
