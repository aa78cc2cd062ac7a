package search

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/sync/errgroup"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/cipher"
)

// WorkerSeed derives the seed of one worker from a master seed. Distinct
// workers get unrelated seeds, and the same master seed always yields the
// same worker seeds.
func WorkerSeed(master uint64, worker int) uint64 {
	var secret [8]byte
	binary.LittleEndian.PutUint64(secret[:], master)
	info := fmt.Appendf(nil, "kaiser-search-worker-%d", worker)
	kdf := hkdf.New(sha256.New, secret[:], []byte("kaiser-search-v1"), info)
	var out [8]byte
	if _, err := io.ReadFull(kdf, out[:]); err != nil {
		panic(fmt.Sprintf("search: deriving worker seed: %v", err))
	}
	seed := binary.LittleEndian.Uint64(out[:])
	if seed == 0 {
		seed = 1
	}
	return seed
}

// ParallelHillClimb runs workers independent HillClimb runs concurrently,
// each with its own Frontier and a seed derived from opts.Seed, then merges
// the frontiers in worker order. A zero opts.Seed picks a master seed from
// system entropy. Restarts applies to each worker.
func ParallelHillClimb[K cipher.Key[K]](ctx context.Context, workers int, ciphertext *alphabet.Buffer, space cipher.KeySpace[K], opts HillClimbOptions) (Outcome[K], error) {
	if err := opts.validate(); err != nil {
		return Outcome[K]{}, err
	}
	master := opts.Seed
	if master == 0 {
		master = EntropySeed()
	}
	return Parallel(ctx, workers, opts.Results, func(ctx context.Context, worker int) (Outcome[K], error) {
		w := opts
		w.Seed = WorkerSeed(master, worker)
		return hillClimb(ctx, ciphertext, space, w, NewRand(w.Seed))
	})
}

// Parallel calls run once per worker concurrently and merges the resulting
// frontiers into one of the given capacity. The first error cancels the
// remaining workers and is returned.
func Parallel[K cipher.Key[K]](ctx context.Context, workers, capacity int, run func(ctx context.Context, worker int) (Outcome[K], error)) (Outcome[K], error) {
	if workers < 1 {
		return Outcome[K]{}, ErrZeroWorkers
	}
	merged, err := NewFrontier[K](capacity)
	if err != nil {
		return Outcome[K]{}, err
	}

	started := time.Now()
	outcomes := make([]Outcome[K], workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		g.Go(func() error {
			out, err := run(gctx, i)
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Outcome[K]{}, err
	}

	total := Outcome[K]{Frontier: merged}
	for _, out := range outcomes {
		merged.Merge(out.Frontier)
		total.Evaluated += out.Evaluated
		total.Climbs += out.Climbs
	}
	total.Elapsed = time.Since(started)
	return total, nil
}
