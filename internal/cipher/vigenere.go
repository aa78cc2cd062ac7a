package cipher

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/64/kaiser/internal/alphabet"
)

// Vigenere applies a Caesar shift per column, with one column per key
// letter.
type Vigenere struct {
	shifts []alphabet.Symbol
}

// NewVigenere builds a key from explicit per-column shifts.
func NewVigenere(shifts []alphabet.Symbol) (Vigenere, error) {
	if len(shifts) == 0 {
		return Vigenere{}, invalidKey("vigenere key is empty")
	}
	return Vigenere{shifts: slices.Clone(shifts)}, nil
}

// ParseVigenere builds a key from a keyword. Letters are case-insensitive;
// anything else is rejected.
func ParseVigenere(word string) (Vigenere, error) {
	word = strings.TrimSpace(word)
	shifts := make([]alphabet.Symbol, 0, len(word))
	for i := 0; i < len(word); i++ {
		s, ok := alphabet.FromByte(word[i])
		if !ok {
			return Vigenere{}, invalidKey("vigenere keyword %q contains %q", word, word[i])
		}
		shifts = append(shifts, s)
	}
	return NewVigenere(shifts)
}

// Period returns the key length.
func (k Vigenere) Period() int { return len(k.shifts) }

func (k Vigenere) Encrypt(buf *alphabet.Buffer) {
	Columns(buf, len(k.shifts), func(col int, v alphabet.View) {
		Caesar{shift: k.shifts[col]}.encryptView(v)
	})
}

func (k Vigenere) Decrypt(buf *alphabet.Buffer) {
	Columns(buf, len(k.shifts), func(col int, v alphabet.View) {
		Caesar{shift: k.shifts[col]}.decryptView(v)
	})
}

func (k Vigenere) Equal(other Vigenere) bool { return slices.Equal(k.shifts, other.shifts) }

func (k Vigenere) String() string {
	return alphabet.FromSymbols(k.shifts).Letters()
}

// VigenereSpace holds every Vigenère key of one length.
type VigenereSpace struct {
	length int
}

// NewVigenereSpace returns the space of keys with the given length.
func NewVigenereSpace(length int) (VigenereSpace, error) {
	if length < 1 {
		return VigenereSpace{}, invalidShape("vigenere key length %d, need at least 1", length)
	}
	return VigenereSpace{length: length}, nil
}

// Length returns the key length of the space.
func (s VigenereSpace) Length() int { return s.length }

func (s VigenereSpace) Random(rng *rand.Rand) Vigenere {
	shifts := make([]alphabet.Symbol, s.length)
	for i := range shifts {
		shifts[i] = alphabet.New(rng.IntN(alphabet.Size))
	}
	return Vigenere{shifts: shifts}
}

// Tweak changes the shift of one column.
func (s VigenereSpace) Tweak(key Vigenere, rng *rand.Rand) Vigenere {
	shifts := slices.Clone(key.shifts)
	i := rng.IntN(len(shifts))
	shifts[i] = otherSymbol(shifts[i], rng)
	return Vigenere{shifts: shifts}
}

func (s VigenereSpace) First() Vigenere {
	return Vigenere{shifts: make([]alphabet.Symbol, s.length)}
}

// Next counts like an odometer with the last column turning fastest.
func (s VigenereSpace) Next(key Vigenere) (Vigenere, bool) {
	shifts := slices.Clone(key.shifts)
	for i := len(shifts) - 1; i >= 0; i-- {
		if int(shifts[i]) < alphabet.Size-1 {
			shifts[i]++
			return Vigenere{shifts: shifts}, true
		}
		shifts[i] = 0
	}
	return Vigenere{}, false
}
