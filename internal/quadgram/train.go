package quadgram

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/64/kaiser/internal/alphabet"
)

//go:embed corpus/*.txt
var corpus embed.FS

// Counts holds the number of times each quadgram was seen.
type Counts struct {
	n     []uint64
	total uint64
}

// NewCounts returns empty counts.
func NewCounts() *Counts {
	return &Counts{n: make([]uint64, Entries)}
}

// Add records count occurrences of the quadgram at index i.
func (c *Counts) Add(i int, count uint64) {
	c.n[i] += count
	c.total += count
}

// Total returns the number of quadgrams recorded.
func (c *Counts) Total() uint64 { return c.total }

// Table converts counts to log10 probabilities. Quadgrams never seen get
// log10(0.01/total), a hundredth of a single observation.
func (c *Counts) Table() (*Table, error) {
	if c.total == 0 {
		return nil, ErrEmptyCorpus
	}
	total := float64(c.total)
	t := New(float32(math.Log10(0.01 / total)))
	for i, n := range c.n {
		if n > 0 {
			t.logp[i] = float32(math.Log10(float64(n) / total))
		}
	}
	return t, nil
}

// CountText adds every quadgram in the letters of r. Anything that is not
// an ASCII letter is skipped, so quadgrams run across spaces and
// punctuation.
func (c *Counts) CountText(r io.Reader) error {
	br := bufio.NewReader(r)
	var window [4]alphabet.Symbol
	have := 0
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading corpus: %w", err)
		}
		s, ok := alphabet.FromByte(b)
		if !ok {
			continue
		}
		copy(window[:], window[1:])
		window[3] = s
		if have < 4 {
			have++
		}
		if have == 4 {
			c.Add(Index(window[0], window[1], window[2], window[3]), 1)
		}
	}
}

// Train builds a table from the quadgrams of a text corpus.
func Train(r io.Reader) (*Table, error) {
	c := NewCounts()
	if err := c.CountText(r); err != nil {
		return nil, err
	}
	return c.Table()
}

// ReadCounts builds a table from lines of the form "TION 13168375". Blank
// lines are ignored; quadgrams may repeat and are summed.
func ReadCounts(r io.Reader) (*Table, error) {
	c := NewCounts()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 || len(fields[0]) != 4 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedCounts, line, sc.Text())
		}
		var q [4]alphabet.Symbol
		for i := range q {
			s, ok := alphabet.FromByte(fields[0][i])
			if !ok {
				return nil, fmt.Errorf("%w: line %d: %q is not four letters", ErrMalformedCounts, line, fields[0])
			}
			q[i] = s
		}
		n, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: count %q", ErrMalformedCounts, line, fields[1])
		}
		c.Add(Index(q[0], q[1], q[2], q[3]), n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading quadgram counts: %w", err)
	}
	return c.Table()
}

// Builtin trains a fresh table on the English corpus compiled into the
// binary. Each call returns a new table.
func Builtin() (*Table, error) {
	entries, err := corpus.ReadDir("corpus")
	if err != nil {
		return nil, fmt.Errorf("reading builtin corpus: %w", err)
	}
	c := NewCounts()
	for _, e := range entries {
		f, err := corpus.Open("corpus/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("opening builtin corpus: %w", err)
		}
		err = c.CountText(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return c.Table()
}
