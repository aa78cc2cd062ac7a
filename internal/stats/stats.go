// Package stats computes the letter statistics kaiser scores candidate
// plaintexts with.
//
// Every function reads an alphabet.Sequence, so it works on a whole Buffer
// or on a single View column. A *alphabet.Buffer takes a slice fast path.
//
// Usage:
//
//	buf := alphabet.MustFromText(text)
//	ioc := stats.IndexOfCoincidence(buf)
//	chi := stats.ChiSquared(buf)
//	ll := stats.Quadgram(buf, table)
package stats

import (
	"math"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/quadgram"
)

// EnglishIOC is the normalised index of coincidence of English text.
const EnglishIOC = 1.73

// English holds the relative frequencies of A through Z in English text.
// Every entry is non-zero.
var English = [alphabet.Size]float64{
	0.08167, 0.01492, 0.02782, 0.04253, 0.12702, 0.02228, 0.02015, 0.06094, 0.06966, 0.00153,
	0.00772, 0.04025, 0.02406, 0.06749, 0.07507, 0.01929, 0.00095, 0.05987, 0.06327, 0.09056,
	0.02758, 0.00978, 0.02360, 0.00150, 0.01974, 0.00074,
}

// Frequencies holds a count per letter, A through Z.
type Frequencies [alphabet.Size]int

// Total returns the sum of all counts.
func (f Frequencies) Total() int {
	n := 0
	for _, c := range f {
		n += c
	}
	return n
}

// LetterFrequencies counts each Symbol of seq.
func LetterFrequencies(seq alphabet.Sequence) Frequencies {
	var f Frequencies
	if buf, ok := seq.(*alphabet.Buffer); ok {
		for _, s := range buf.Symbols() {
			f[s]++
		}
		return f
	}
	for i := range seq.Len() {
		f[seq.At(i)]++
	}
	return f
}

// ChiSquared measures how far the letter distribution of seq is from
// English. Lower is closer. It is NaN for an empty sequence.
func ChiSquared(seq alphabet.Sequence) float64 {
	freqs := LetterFrequencies(seq)
	n := float64(seq.Len())
	if n == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, f := range freqs {
		expected := n * English[i]
		diff := float64(f) - expected
		sum += diff * diff / expected
	}
	return sum
}

// IndexOfCoincidence returns sum f*(f-1) over the letter counts divided by
// N*(N-1)/26. English text sits near EnglishIOC and uniformly random text
// near 1. It is NaN when seq has fewer than two symbols.
func IndexOfCoincidence(seq alphabet.Sequence) float64 {
	n := seq.Len()
	if n < 2 {
		return math.NaN()
	}
	total := 0
	for _, f := range LetterFrequencies(seq) {
		total += f * (f - 1)
	}
	return float64(total) / (float64(n*(n-1)) / alphabet.Size)
}

// Quadgram returns the sum of the table's log probabilities over every
// window of four consecutive symbols, divided by the length of seq. It is
// NaN for an empty sequence and 0 for one shorter than four.
func Quadgram(seq alphabet.Sequence, table *quadgram.Table) float64 {
	n := seq.Len()
	if n == 0 {
		return math.NaN()
	}
	sum := 0.0
	if buf, ok := seq.(*alphabet.Buffer); ok {
		syms := buf.Symbols()
		for i := 0; i+3 < len(syms); i++ {
			sum += float64(table.At(quadgram.Index(syms[i], syms[i+1], syms[i+2], syms[i+3])))
		}
	} else {
		for i := 0; i+3 < n; i++ {
			sum += float64(table.At(quadgram.Index(seq.At(i), seq.At(i+1), seq.At(i+2), seq.At(i+3))))
		}
	}
	return sum / float64(n)
}
