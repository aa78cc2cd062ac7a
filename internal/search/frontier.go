package search

import (
	"iter"
	"sort"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/cipher"
	"github.com/64/kaiser/internal/score"
)

// Result is one scored candidate decryption.
type Result[K cipher.Key[K]] struct {
	Key       K
	Plaintext *alphabet.Buffer
	Score     score.Score
}

// Frontier keeps the best N distinct-key results seen so far, best first.
//
// Results with equal scores stay in insertion order. A key that is already
// present is never inserted again, whatever its score: the first result
// for a key wins. Unscoreable results are never kept.
type Frontier[K cipher.Key[K]] struct {
	capacity int
	entries  []Result[K]
}

// NewFrontier returns an empty Frontier holding at most capacity results.
func NewFrontier[K cipher.Key[K]](capacity int) (*Frontier[K], error) {
	if capacity < 1 {
		return nil, ErrZeroResults
	}
	return &Frontier[K]{capacity: capacity, entries: make([]Result[K], 0, capacity+1)}, nil
}

// Len returns the number of results held.
func (f *Frontier[K]) Len() int { return len(f.entries) }

// Cap returns the maximum number of results.
func (f *Frontier[K]) Cap() int { return f.capacity }

// Threshold returns the score a new result must beat to be kept: the worst
// retained score when full, Min otherwise.
func (f *Frontier[K]) Threshold() score.Score {
	if len(f.entries) < f.capacity {
		return score.Min
	}
	return f.entries[len(f.entries)-1].Score
}

// Admits reports whether a result with score s would currently be kept,
// ignoring duplicate keys. Engines use it to avoid copying plaintexts that
// would be rejected.
func (f *Frontier[K]) Admits(s score.Score) bool {
	return s.Valid() && s > f.Threshold()
}

// Insert offers a result. It reports whether the result was kept. The
// Frontier takes ownership of plaintext.
func (f *Frontier[K]) Insert(plaintext *alphabet.Buffer, key K, s score.Score) bool {
	if !f.Admits(s) {
		return false
	}
	if f.contains(key) {
		return false
	}
	// First position with a strictly worse score, so ties keep insertion
	// order.
	pos := sort.Search(len(f.entries), func(i int) bool {
		return f.entries[i].Score < s
	})
	f.entries = append(f.entries, Result[K]{})
	copy(f.entries[pos+1:], f.entries[pos:])
	f.entries[pos] = Result[K]{Key: key, Plaintext: plaintext, Score: s}
	if len(f.entries) > f.capacity {
		f.entries[len(f.entries)-1] = Result[K]{}
		f.entries = f.entries[:f.capacity]
	}
	return true
}

func (f *Frontier[K]) contains(key K) bool {
	for i := range f.entries {
		if f.entries[i].Key.Equal(key) {
			return true
		}
	}
	return false
}

// Best returns the best result, if any.
func (f *Frontier[K]) Best() (Result[K], bool) {
	if len(f.entries) == 0 {
		return Result[K]{}, false
	}
	return f.entries[0], true
}

// Results returns a copy of the results, best first.
func (f *Frontier[K]) Results() []Result[K] {
	out := make([]Result[K], len(f.entries))
	copy(out, f.entries)
	return out
}

// All iterates over ranks and results, best first.
func (f *Frontier[K]) All() iter.Seq2[int, Result[K]] {
	return func(yield func(int, Result[K]) bool) {
		for i, r := range f.entries {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Merge inserts every result of other into f, best first.
func (f *Frontier[K]) Merge(other *Frontier[K]) {
	for _, r := range other.entries {
		f.Insert(r.Plaintext, r.Key, r.Score)
	}
}
