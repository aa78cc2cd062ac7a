// Package quadgram holds the table of English quadgram log probabilities
// used to score candidate plaintexts.
//
// A Table has one float32 per 4-letter sequence, indexed by the sequence
// read as a base-26 number. Tables are built by training on a text corpus,
// parsed from the common "ABCD count" text format, or decoded from their
// binary form: 26^4 little-endian IEEE 754 float32 values with no header.
//
// There is no process-wide table. Callers load one and pass it to the
// scorer.
//
// Usage:
//
//	table, err := quadgram.Builtin()
//	// or
//	f, _ := os.Open("english_quadgrams.bin")
//	table, err := quadgram.Read(f)
package quadgram

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/64/kaiser/internal/alphabet"
)

// Entries is the number of quadgrams, 26^4.
const Entries = alphabet.Size * alphabet.Size * alphabet.Size * alphabet.Size

// EncodedSize is the length in bytes of a binary table.
const EncodedSize = Entries * 4

// Table errors
var (
	// ErrTableSize indicates binary table data that is not exactly
	// EncodedSize bytes.
	ErrTableSize = errors.New("quadgram: table data has wrong size")

	// ErrEmptyCorpus indicates training input without a single quadgram.
	ErrEmptyCorpus = errors.New("quadgram: corpus contains no quadgrams")

	// ErrMalformedCounts indicates a line of a counts file that is not
	// "ABCD count".
	ErrMalformedCounts = errors.New("quadgram: malformed counts line")
)

// Index returns the table index of the quadgram abcd.
func Index(a, b, c, d alphabet.Symbol) int {
	return ((int(a)*alphabet.Size+int(b))*alphabet.Size+int(c))*alphabet.Size + int(d)
}

// Table maps every quadgram index to a log10 probability.
type Table struct {
	logp []float32
}

// New returns a table with every entry set to floor.
func New(floor float32) *Table {
	t := &Table{logp: make([]float32, Entries)}
	for i := range t.logp {
		t.logp[i] = floor
	}
	return t
}

// At returns the log probability stored at index i.
func (t *Table) At(i int) float32 {
	return t.logp[i]
}

// Set stores a log probability at index i.
func (t *Table) Set(i int, v float32) {
	t.logp[i] = v
}

// Lookup returns the log probability of a 4-letter string. It reports
// false when s is not exactly four ASCII letters.
func (t *Table) Lookup(s string) (float32, bool) {
	if len(s) != 4 {
		return 0, false
	}
	var q [4]alphabet.Symbol
	for i := range q {
		sym, ok := alphabet.FromByte(s[i])
		if !ok {
			return 0, false
		}
		q[i] = sym
	}
	return t.logp[Index(q[0], q[1], q[2], q[3])], true
}

// Read decodes a binary table. The input must hold exactly EncodedSize
// bytes.
func Read(r io.Reader) (*Table, error) {
	raw := make([]byte, EncodedSize)
	n, err := io.ReadFull(r, raw)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrTableSize, n, EncodedSize)
		}
		return nil, fmt.Errorf("reading quadgram table: %w", err)
	}
	var extra [1]byte
	if m, _ := r.Read(extra[:]); m > 0 {
		return nil, fmt.Errorf("%w: trailing data after %d bytes", ErrTableSize, EncodedSize)
	}

	t := &Table{logp: make([]float32, Entries)}
	for i := range t.logp {
		t.logp[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return t, nil
}

// WriteTo encodes the table in the binary format Read accepts.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var word [4]byte
	var written int64
	for _, v := range t.logp {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
		n, err := bw.Write(word[:])
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("writing quadgram table: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("writing quadgram table: %w", err)
	}
	return written, nil
}

// Summary describes the value range of a table.
type Summary struct {
	Min, Max, Mean float64
	// Observed counts entries above the minimum, which for a trained table
	// are the quadgrams seen in the corpus.
	Observed int
}

// Summarize computes a Summary of t.
func (t *Table) Summarize() Summary {
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, v := range t.logp {
		f := float64(v)
		s.Min = math.Min(s.Min, f)
		s.Max = math.Max(s.Max, f)
		sum += f
	}
	s.Mean = sum / Entries
	for _, v := range t.logp {
		if float64(v) > s.Min {
			s.Observed++
		}
	}
	return s
}
