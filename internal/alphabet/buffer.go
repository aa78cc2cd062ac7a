package alphabet

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Alphabet errors
var (
	// ErrNonASCII indicates an alphabetic character outside ASCII in source text.
	ErrNonASCII = errors.New("alphabet: non-ascii alphabetic character")

	// ErrZeroStride indicates a View requested with a stride below one.
	ErrZeroStride = errors.New("alphabet: stride must be at least 1")

	// ErrNegativeOffset indicates a View requested with a negative offset.
	ErrNegativeOffset = errors.New("alphabet: offset must not be negative")
)

// Sequence is a read-only, indexable run of Symbols. Buffer and View both
// satisfy it.
type Sequence interface {
	Len() int
	At(i int) Symbol
}

// source is the text a Buffer was built from. It is shared by every clone
// and never modified.
type source struct {
	text string
}

// Buffer holds the Symbols of a text plus the original text for rendering.
//
// The i-th Symbol corresponds to the i-th alphabetic character of the
// original text. Clones share the original text and copy only the Symbols.
type Buffer struct {
	syms []Symbol
	src  *source
}

// isAlphabetic reports whether r is alphabetic in the Unicode sense: a
// letter, a letter-like number such as a Roman numeral, or a combining
// alphabetic mark.
func isAlphabetic(r rune) bool {
	return unicode.In(r, unicode.Letter, unicode.Nl, unicode.Other_Alphabetic)
}

// FromText builds a Buffer from s. Non-alphabetic characters are dropped
// from the Symbol sequence but kept for Render. Alphabetic characters outside
// ASCII are rejected with ErrNonASCII.
func FromText(s string) (*Buffer, error) {
	syms := make([]Symbol, 0, len(s))
	for i, r := range s {
		if !isAlphabetic(r) {
			continue
		}
		if r >= utf8.RuneSelf {
			return nil, fmt.Errorf("%w: %q at byte %d", ErrNonASCII, r, i)
		}
		sym, _ := FromByte(byte(r))
		syms = append(syms, sym)
	}
	return &Buffer{syms: syms, src: &source{text: s}}, nil
}

// MustFromText is FromText for literals known to be valid. It panics on error.
func MustFromText(s string) *Buffer {
	b, err := FromText(s)
	if err != nil {
		panic(err)
	}
	return b
}

// FromSymbols builds a Buffer whose original text is the upper-case letters
// of syms. The slice is copied.
func FromSymbols(syms []Symbol) *Buffer {
	own := make([]Symbol, len(syms))
	copy(own, syms)
	var sb strings.Builder
	sb.Grow(len(own))
	for _, s := range own {
		sb.WriteByte(s.Upper())
	}
	return &Buffer{syms: own, src: &source{text: sb.String()}}
}

// Len returns the number of Symbols.
func (b *Buffer) Len() int {
	return len(b.syms)
}

// At returns the i-th Symbol.
func (b *Buffer) At(i int) Symbol {
	return b.syms[i]
}

// Set replaces the i-th Symbol.
func (b *Buffer) Set(i int, s Symbol) {
	b.syms[i] = s
}

// Symbols exposes the Symbol slice for read-mostly hot loops. Callers that
// write through it must own the Buffer.
func (b *Buffer) Symbols() []Symbol {
	return b.syms
}

// All iterates over positions and Symbols in order.
func (b *Buffer) All() iter.Seq2[int, Symbol] {
	return func(yield func(int, Symbol) bool) {
		for i, s := range b.syms {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Update replaces every Symbol with f(position, symbol).
func (b *Buffer) Update(f func(i int, s Symbol) Symbol) {
	for i, s := range b.syms {
		b.syms[i] = f(i, s)
	}
}

// Clone returns a Buffer with its own copy of the Symbols. The original
// text is shared.
func (b *Buffer) Clone() *Buffer {
	syms := make([]Symbol, len(b.syms))
	copy(syms, b.syms)
	return &Buffer{syms: syms, src: b.src}
}

// CopyFrom overwrites b's Symbols with other's. Both must have equal length.
func (b *Buffer) CopyFrom(other *Buffer) {
	if len(b.syms) != len(other.syms) {
		panic(fmt.Sprintf("alphabet: copy between buffers of length %d and %d", len(b.syms), len(other.syms)))
	}
	copy(b.syms, other.syms)
}

// Slice returns a Buffer sharing Symbols [from, to) with b. Writes through
// the slice are visible in b. The slice cannot be rendered.
func (b *Buffer) Slice(from, to int) *Buffer {
	return &Buffer{syms: b.syms[from:to:to], src: nil}
}

// View returns the stride-spaced projection of b starting at offset.
func (b *Buffer) View(offset, stride int) (View, error) {
	if stride < 1 {
		return View{}, ErrZeroStride
	}
	if offset < 0 {
		return View{}, ErrNegativeOffset
	}
	return View{buf: b, offset: offset, stride: stride}, nil
}

// Column is View for callers that have already validated offset and stride.
// It panics on invalid arguments.
func (b *Buffer) Column(offset, stride int) View {
	v, err := b.View(offset, stride)
	if err != nil {
		panic(err)
	}
	return v
}

// Equal reports whether b and other hold the same Symbols. The original
// text is not compared.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if len(b.syms) != len(other.syms) {
		return false
	}
	for i := range b.syms {
		if b.syms[i] != other.syms[i] {
			return false
		}
	}
	return true
}

// Original returns the text the Buffer was built from.
func (b *Buffer) Original() string {
	if b.src == nil {
		return ""
	}
	return b.src.text
}

// Letters returns the Symbols as upper-case letters with nothing else.
func (b *Buffer) Letters() string {
	out := make([]byte, len(b.syms))
	for i, s := range b.syms {
		out[i] = s.Upper()
	}
	return string(out)
}

// Render rebuilds the original text with each letter replaced by the
// corresponding Symbol in the original letter's case. Everything else is
// copied through. A Buffer whose Symbol count disagrees with its original
// text is corrupt and Render panics.
func (b *Buffer) Render() string {
	if b.src == nil {
		panic("alphabet: render of a buffer without original text")
	}
	var sb strings.Builder
	sb.Grow(len(b.src.text))
	next := 0
	for _, r := range b.src.text {
		if !isAlphabetic(r) {
			sb.WriteRune(r)
			continue
		}
		if next >= len(b.syms) {
			panic(fmt.Sprintf("alphabet: render ran out of symbols after %d of %d", next, len(b.syms)))
		}
		s := b.syms[next]
		next++
		if unicode.IsUpper(r) {
			sb.WriteByte(s.Upper())
		} else {
			sb.WriteByte(s.Lower())
		}
	}
	if next != len(b.syms) {
		panic(fmt.Sprintf("alphabet: render consumed %d of %d symbols", next, len(b.syms)))
	}
	return sb.String()
}

// String renders the Buffer.
func (b *Buffer) String() string {
	if b.src == nil {
		return b.Letters()
	}
	return b.Render()
}
