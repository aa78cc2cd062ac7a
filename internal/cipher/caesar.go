package cipher

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/64/kaiser/internal/alphabet"
)

// Caesar shifts every Symbol by a fixed amount.
type Caesar struct {
	shift alphabet.Symbol
}

// NewCaesar returns the Caesar key for shift, reduced modulo 26.
func NewCaesar(shift int) Caesar {
	return Caesar{shift: alphabet.New(0).Shift(shift)}
}

// ParseCaesar accepts a shift as a decimal integer or as a single letter
// (A=0).
func ParseCaesar(s string) (Caesar, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		if sym, ok := alphabet.FromByte(s[0]); ok {
			return Caesar{shift: sym}, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Caesar{}, invalidKey("caesar shift %q is not an integer or letter", s)
	}
	return NewCaesar(n), nil
}

// Shift returns the shift in [0, 26).
func (c Caesar) Shift() int { return int(c.shift) }

func (c Caesar) Encrypt(buf *alphabet.Buffer) {
	syms := buf.Symbols()
	for i, s := range syms {
		syms[i] = s.Add(c.shift)
	}
}

func (c Caesar) Decrypt(buf *alphabet.Buffer) {
	syms := buf.Symbols()
	for i, s := range syms {
		syms[i] = s.Sub(c.shift)
	}
}

func (c Caesar) encryptView(v alphabet.View) {
	v.Update(func(_ int, s alphabet.Symbol) alphabet.Symbol { return s.Add(c.shift) })
}

func (c Caesar) decryptView(v alphabet.View) {
	v.Update(func(_ int, s alphabet.Symbol) alphabet.Symbol { return s.Sub(c.shift) })
}

func (c Caesar) Equal(other Caesar) bool { return c.shift == other.shift }

func (c Caesar) String() string { return strconv.Itoa(int(c.shift)) }

// CaesarSpace is the 26 Caesar shifts.
type CaesarSpace struct{}

func (CaesarSpace) Random(rng *rand.Rand) Caesar {
	return Caesar{shift: alphabet.New(rng.IntN(alphabet.Size))}
}

func (CaesarSpace) Tweak(key Caesar, rng *rand.Rand) Caesar {
	return Caesar{shift: otherSymbol(key.shift, rng)}
}

func (CaesarSpace) First() Caesar { return Caesar{} }

func (CaesarSpace) Next(key Caesar) (Caesar, bool) {
	if int(key.shift) == alphabet.Size-1 {
		return Caesar{}, false
	}
	return Caesar{shift: key.shift + 1}, true
}
