// Package cipher defines the transform contract shared by the classical
// ciphers kaiser can attack, and the key spaces the search engines walk.
//
// A Cipher mutates a Buffer in place. Decrypt undoes Encrypt symbol for
// symbol for every Buffer, empty ones included. Keys are small immutable
// values; every key type is itself a Cipher.
//
// A KeySpace knows how to draw a random key, perturb one locally and
// enumerate all keys in a fixed order. The shape of the space (key length,
// column count) is fixed when the space is constructed, so an invalid shape
// is reported once and never during a search.
//
// Usage:
//
//	key, err := cipher.ParseVigenere("KEY")
//	buf := alphabet.MustFromText("Hello world!")
//	key.Encrypt(buf)
//	fmt.Println(buf.Render()) // Rijvs uyvjn!
package cipher

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/64/kaiser/internal/alphabet"
)

// Cipher errors
var (
	// ErrInvalidKey indicates key material the cipher cannot use, such as an
	// affine multiplier without a modular inverse.
	ErrInvalidKey = errors.New("cipher: invalid key")

	// ErrInvalidShape indicates a key space shape the cipher cannot satisfy,
	// such as a zero key length.
	ErrInvalidShape = errors.New("cipher: invalid key shape")

	// ErrNotEnumerable indicates a key space without a practical enumerator.
	ErrNotEnumerable = errors.New("cipher: key space is not enumerable")
)

// Cipher is a reversible transform over Symbols.
type Cipher interface {
	Encrypt(buf *alphabet.Buffer)
	Decrypt(buf *alphabet.Buffer)
}

// Key is a Cipher that the search engines can compare and print.
type Key[K any] interface {
	Cipher
	Equal(other K) bool
	fmt.Stringer
}

// KeySpace generates keys of a single cipher for a single shape.
type KeySpace[K Key[K]] interface {
	// Random draws a uniformly random key.
	Random(rng *rand.Rand) K

	// Tweak returns a key that differs from key by one local change.
	// Repeated tweaks reach every key with nonzero probability.
	Tweak(key K, rng *rand.Rand) K

	// First returns the first key of the enumeration order.
	First() K

	// Next returns the successor of key in enumeration order, or false
	// when key is the last one.
	Next(key K) (K, bool)
}

// Keys enumerates every key of space exactly once, in order.
func Keys[K Key[K]](space KeySpace[K]) iter.Seq[K] {
	return func(yield func(K) bool) {
		for k, ok := space.First(), true; ok; k, ok = space.Next(k) {
			if !yield(k) {
				return
			}
		}
	}
}

func invalidKey(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidKey, fmt.Sprintf(format, args...))
}

func invalidShape(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidShape, fmt.Sprintf(format, args...))
}

// otherSymbol draws a Symbol uniformly from the 25 values different from s.
func otherSymbol(s alphabet.Symbol, rng *rand.Rand) alphabet.Symbol {
	return s.Shift(1 + rng.IntN(alphabet.Size-1))
}

// distinctPair draws two different indices in [0, n). n must be at least 2.
func distinctPair(n int, rng *rand.Rand) (int, int) {
	i := rng.IntN(n)
	j := rng.IntN(n - 1)
	if j >= i {
		j++
	}
	return i, j
}
