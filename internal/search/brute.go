package search

import (
	"context"
	"log/slog"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/cipher"
)

// BruteForce decrypts ciphertext with every key of space, in enumeration
// order, and returns the best opts.Results of them. The best entry of the
// Frontier is the highest scoring key of the whole space.
//
// The context is checked periodically; a cancelled run returns the
// Frontier built so far together with the context error.
func BruteForce[K cipher.Key[K]](ctx context.Context, ciphertext *alphabet.Buffer, space cipher.KeySpace[K], opts Options) (Outcome[K], error) {
	r, err := newRun[K](ctx, EngineBrute, ciphertext, opts)
	if err != nil {
		return Outcome[K]{}, err
	}
	opts.logger().Debug("search started",
		slog.String("engine", EngineBrute),
		slog.String("method", opts.Scorer.Method().String()),
		slog.Int("results", opts.Results),
		slog.Int("symbols", ciphertext.Len()),
	)

	r.climbs = 1
	for key := range cipher.Keys(space) {
		r.evaluate(key)
		if err := r.cancelled(); err != nil {
			return r.finish(err)
		}
	}
	return r.finish(nil)
}
