// Package alphabet maps text onto the 26-letter Latin alphabet.
//
// Every cipher and statistic in kaiser works on Symbols, integers in [0, 26)
// that stand for a letter independent of case. A Buffer carries the Symbols
// of a text together with a shared reference to the text it was built from,
// so that a transformed Buffer can be rendered back with the original casing
// and punctuation. A View selects every k-th Symbol of a Buffer starting at
// an offset and is how periodic ciphers reach their sub-alphabets.
//
// Usage:
//
//	buf, err := alphabet.FromText("Hello world!")
//	buf.Update(func(_ int, s alphabet.Symbol) alphabet.Symbol { return s.Shift(5) })
//	fmt.Println(buf.Render()) // Mjqqt btwqi!
package alphabet

import "fmt"

// Size is the number of symbols in the alphabet.
const Size = 26

// Symbol is one letter of the alphabet, A=0 through Z=25.
type Symbol uint8

// New returns the Symbol with value v. Values outside [0, 26) are a
// programming error and panic.
func New(v int) Symbol {
	if v < 0 || v >= Size {
		panic(fmt.Sprintf("alphabet: symbol value %d out of range", v))
	}
	return Symbol(v)
}

// FromByte converts an ASCII letter of either case to its Symbol.
func FromByte(c byte) (Symbol, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return Symbol(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return Symbol(c - 'a'), true
	default:
		return 0, false
	}
}

// Add returns s+n modulo 26.
func (s Symbol) Add(n Symbol) Symbol {
	return (s + n) % Size
}

// Sub returns s-n modulo 26.
func (s Symbol) Sub(n Symbol) Symbol {
	return (s + Size - n%Size) % Size
}

// Shift returns s+n modulo 26 for any integer n, negative included.
func (s Symbol) Shift(n int) Symbol {
	v := (int(s) + n) % Size
	if v < 0 {
		v += Size
	}
	return Symbol(v)
}

// Mul returns s*m modulo 26.
func (s Symbol) Mul(m Symbol) Symbol {
	return Symbol((int(s) * int(m)) % Size)
}

// Inverse returns the multiplicative inverse of u modulo 26. The second
// result is false when u is not a unit (even, or 13).
func Inverse(u Symbol) (Symbol, bool) {
	for i := 1; i < Size; i++ {
		if (int(u)*i)%Size == 1 {
			return Symbol(i), true
		}
	}
	return 0, false
}

// Units returns the symbols that have a multiplicative inverse modulo 26,
// in ascending order.
func Units() []Symbol {
	units := make([]Symbol, 0, 12)
	for i := 1; i < Size; i++ {
		if _, ok := Inverse(Symbol(i)); ok {
			units = append(units, Symbol(i))
		}
	}
	return units
}

// Upper returns the upper-case ASCII letter for s.
func (s Symbol) Upper() byte {
	return 'A' + byte(s)
}

// Lower returns the lower-case ASCII letter for s.
func (s Symbol) Lower() byte {
	return 'a' + byte(s)
}

// String returns the upper-case letter.
func (s Symbol) String() string {
	return string(rune(s.Upper()))
}
