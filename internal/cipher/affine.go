package cipher

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/64/kaiser/internal/alphabet"
)

// Affine maps x to a*x + b modulo 26. The multiplier a must be a unit.
type Affine struct {
	a, b alphabet.Symbol
	inv  alphabet.Symbol
}

// NewAffine returns the Affine key (a, b). It fails with ErrInvalidKey when
// a has no inverse modulo 26.
func NewAffine(a, b int) (Affine, error) {
	sa := alphabet.New(0).Shift(a)
	inv, ok := alphabet.Inverse(sa)
	if !ok {
		return Affine{}, invalidKey("affine multiplier %d has no inverse modulo %d", a, alphabet.Size)
	}
	return Affine{a: sa, b: alphabet.New(0).Shift(b), inv: inv}, nil
}

// ParseAffine parses "a,b".
func ParseAffine(s string) (Affine, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Affine{}, invalidKey("affine key %q is not of the form a,b", s)
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Affine{}, invalidKey("affine multiplier %q: %v", parts[0], err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Affine{}, invalidKey("affine offset %q: %v", parts[1], err)
	}
	return NewAffine(a, b)
}

// A returns the multiplier.
func (k Affine) A() int { return int(k.a) }

// B returns the offset.
func (k Affine) B() int { return int(k.b) }

func (k Affine) Encrypt(buf *alphabet.Buffer) {
	syms := buf.Symbols()
	for i, s := range syms {
		syms[i] = s.Mul(k.a).Add(k.b)
	}
}

func (k Affine) Decrypt(buf *alphabet.Buffer) {
	syms := buf.Symbols()
	for i, s := range syms {
		syms[i] = s.Sub(k.b).Mul(k.inv)
	}
}

func (k Affine) Equal(other Affine) bool { return k.a == other.a && k.b == other.b }

func (k Affine) String() string { return fmt.Sprintf("%d,%d", k.a, k.b) }

// AffineSpace is the 12*26 affine keys, ordered by multiplier then offset.
type AffineSpace struct{}

var units = alphabet.Units()

func affineKey(a, b alphabet.Symbol) Affine {
	inv, _ := alphabet.Inverse(a)
	return Affine{a: a, b: b, inv: inv}
}

func (AffineSpace) Random(rng *rand.Rand) Affine {
	return affineKey(units[rng.IntN(len(units))], alphabet.New(rng.IntN(alphabet.Size)))
}

// Tweak changes either the multiplier or the offset, never both.
func (AffineSpace) Tweak(key Affine, rng *rand.Rand) Affine {
	if rng.IntN(2) == 0 {
		i := slices.Index(units, key.a)
		j := rng.IntN(len(units) - 1)
		if j >= i {
			j++
		}
		return affineKey(units[j], key.b)
	}
	return affineKey(key.a, otherSymbol(key.b, rng))
}

func (AffineSpace) First() Affine { return affineKey(units[0], 0) }

func (AffineSpace) Next(key Affine) (Affine, bool) {
	if int(key.b) < alphabet.Size-1 {
		return affineKey(key.a, key.b+1), true
	}
	i := slices.Index(units, key.a)
	if i == len(units)-1 {
		return Affine{}, false
	}
	return affineKey(units[i+1], 0), true
}
