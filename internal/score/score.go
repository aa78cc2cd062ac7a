// Package score turns letter statistics into a single comparable number:
// the higher a Score, the more a candidate plaintext looks like English.
//
// The three methods produce values on different scales, but every Score is
// a finite float64 or Min, so engines compare them without knowing which
// method produced them. A statistic that is undefined for a candidate (the
// index of coincidence of a single letter, anything of an empty text)
// becomes Min and never wins a place in a search frontier.
//
// Usage:
//
//	table, _ := quadgram.Builtin()
//	scorer, err := score.NewScorer(score.Quadgrams, table)
//	s := scorer.Score(buf)
package score

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/quadgram"
	"github.com/64/kaiser/internal/stats"
)

// Score errors
var (
	// ErrUnknownMethod indicates a method name that is not recognised.
	ErrUnknownMethod = errors.New("score: unknown method")

	// ErrMissingTable indicates the Quadgrams method without a table.
	ErrMissingTable = errors.New("score: quadgram method requires a table")
)

// Method selects the statistic a Scorer uses.
type Method int

const (
	// Quadgrams is the per-letter quadgram log likelihood. It separates
	// English from near misses far better than the single-letter methods.
	Quadgrams Method = iota
	// ChiSquared is the negated chi-squared distance from English letter
	// frequencies.
	ChiSquared
	// IOC is the negated distance of the index of coincidence from English.
	IOC
)

var methodNames = map[Method]string{
	Quadgrams:  "quadgrams",
	ChiSquared: "chi",
	IOC:        "ioc",
}

// Methods lists every method.
func Methods() []Method {
	return []Method{Quadgrams, ChiSquared, IOC}
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "Method(" + strconv.Itoa(int(m)) + ")"
}

// ParseMethod parses a method name. Names are case-insensitive and accept
// a few common spellings.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quadgrams", "quadgram", "quad":
		return Quadgrams, nil
	case "chi", "chisquared", "chi-squared", "chi2":
		return ChiSquared, nil
	case "ioc", "index-of-coincidence":
		return IOC, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if _, ok := methodNames[m]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Score is a fitness value. Higher is better.
type Score float64

// Min is the worst possible Score. Unscoreable candidates get it.
var Min = Score(math.Inf(-1))

// Of converts a raw value to a Score, mapping NaN to Min.
func Of(v float64) Score {
	if math.IsNaN(v) {
		return Min
	}
	return Score(v)
}

// Valid reports whether s can compete for a place among results.
func (s Score) Valid() bool {
	return s > Min
}

// Compare orders scores ascending: it returns -1 when s is worse than other,
// +1 when better and 0 when equal.
func (s Score) Compare(other Score) int {
	return cmp.Compare(s, other)
}

func (s Score) String() string {
	if !s.Valid() {
		return "-inf"
	}
	return strconv.FormatFloat(float64(s), 'f', 4, 64)
}

// Scorer scores buffers with a fixed method.
type Scorer struct {
	method Method
	table  *quadgram.Table
}

// NewScorer returns a Scorer for method. The table is required for
// Quadgrams and ignored otherwise.
func NewScorer(method Method, table *quadgram.Table) (*Scorer, error) {
	if _, ok := methodNames[method]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(method))
	}
	if method == Quadgrams && table == nil {
		return nil, ErrMissingTable
	}
	return &Scorer{method: method, table: table}, nil
}

// Method returns the method the Scorer uses.
func (s *Scorer) Method() Method { return s.method }

// Score rates seq. It only reads seq.
func (s *Scorer) Score(seq alphabet.Sequence) Score {
	switch s.method {
	case ChiSquared:
		return Of(-stats.ChiSquared(seq))
	case IOC:
		return Of(-math.Abs(stats.EnglishIOC - stats.IndexOfCoincidence(seq)))
	default:
		return Of(stats.Quadgram(seq, s.table))
	}
}
