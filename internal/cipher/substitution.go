package cipher

import (
	"math/rand/v2"
	"strings"

	"github.com/64/kaiser/internal/alphabet"
)

// Substitution replaces each letter through a fixed permutation of the
// alphabet.
type Substitution struct {
	fwd [alphabet.Size]alphabet.Symbol
	inv [alphabet.Size]alphabet.Symbol
}

func newSubstitution(fwd [alphabet.Size]alphabet.Symbol) Substitution {
	k := Substitution{fwd: fwd}
	for i, s := range fwd {
		k.inv[s] = alphabet.Symbol(i)
	}
	return k
}

// SubstitutionFromAlphabet builds a key from a 26-letter cipher alphabet:
// plaintext A maps to its first letter, B to the second and so on.
func SubstitutionFromAlphabet(cipherAlphabet string) (Substitution, error) {
	cipherAlphabet = strings.TrimSpace(cipherAlphabet)
	if len(cipherAlphabet) != alphabet.Size {
		return Substitution{}, invalidKey("substitution alphabet has %d letters, need %d", len(cipherAlphabet), alphabet.Size)
	}
	var fwd [alphabet.Size]alphabet.Symbol
	var seen [alphabet.Size]bool
	for i := 0; i < alphabet.Size; i++ {
		s, ok := alphabet.FromByte(cipherAlphabet[i])
		if !ok {
			return Substitution{}, invalidKey("substitution alphabet contains %q", cipherAlphabet[i])
		}
		if seen[s] {
			return Substitution{}, invalidKey("substitution alphabet repeats %s", s)
		}
		seen[s] = true
		fwd[i] = s
	}
	return newSubstitution(fwd), nil
}

// SubstitutionFromKeyword builds the classic keyword alphabet: the
// keyword's letters without repeats, then the rest of the alphabet in order.
func SubstitutionFromKeyword(word string) (Substitution, error) {
	var fwd [alphabet.Size]alphabet.Symbol
	var seen [alphabet.Size]bool
	n := 0
	for i := 0; i < len(word); i++ {
		s, ok := alphabet.FromByte(word[i])
		if !ok {
			return Substitution{}, invalidKey("substitution keyword %q contains %q", word, word[i])
		}
		if !seen[s] {
			seen[s] = true
			fwd[n] = s
			n++
		}
	}
	for v := range alphabet.Size {
		if !seen[v] {
			fwd[n] = alphabet.Symbol(v)
			n++
		}
	}
	return newSubstitution(fwd), nil
}

// ParseSubstitution accepts a full 26-letter alphabet or a keyword.
func ParseSubstitution(s string) (Substitution, error) {
	s = strings.TrimSpace(s)
	if len(s) == alphabet.Size {
		return SubstitutionFromAlphabet(s)
	}
	if s == "" {
		return Substitution{}, invalidKey("substitution keyword is empty")
	}
	return SubstitutionFromKeyword(s)
}

func (k Substitution) Encrypt(buf *alphabet.Buffer) {
	syms := buf.Symbols()
	for i, s := range syms {
		syms[i] = k.fwd[s]
	}
}

func (k Substitution) Decrypt(buf *alphabet.Buffer) {
	syms := buf.Symbols()
	for i, s := range syms {
		syms[i] = k.inv[s]
	}
}

func (k Substitution) Equal(other Substitution) bool { return k.fwd == other.fwd }

// String returns the cipher alphabet.
func (k Substitution) String() string {
	return alphabet.FromSymbols(k.fwd[:]).Letters()
}

// SubstitutionSpace is all 26! cipher alphabets. It can be enumerated in
// principle but only the stochastic engines are practical on it.
type SubstitutionSpace struct{}

func (SubstitutionSpace) Random(rng *rand.Rand) Substitution {
	var fwd [alphabet.Size]alphabet.Symbol
	for i, p := range rng.Perm(alphabet.Size) {
		fwd[i] = alphabet.Symbol(p)
	}
	return newSubstitution(fwd)
}

// Tweak swaps two entries of the cipher alphabet.
func (SubstitutionSpace) Tweak(key Substitution, rng *rand.Rand) Substitution {
	fwd := key.fwd
	i, j := distinctPair(alphabet.Size, rng)
	fwd[i], fwd[j] = fwd[j], fwd[i]
	return newSubstitution(fwd)
}

func (SubstitutionSpace) First() Substitution {
	var fwd [alphabet.Size]alphabet.Symbol
	for i := range fwd {
		fwd[i] = alphabet.Symbol(i)
	}
	return newSubstitution(fwd)
}

// Next steps to the lexicographically next cipher alphabet.
func (SubstitutionSpace) Next(key Substitution) (Substitution, bool) {
	fwd := key.fwd
	if !nextPermutation(fwd[:]) {
		return Substitution{}, false
	}
	return newSubstitution(fwd), true
}

// nextPermutation rearranges p into its lexicographic successor. It
// returns false, leaving p unchanged, when p is the last permutation.
func nextPermutation[T ~uint8 | ~int](p []T) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}
