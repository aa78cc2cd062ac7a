package cipher

import (
	"fmt"

	"github.com/64/kaiser/internal/alphabet"
)

// Columns splits a Buffer into period interleaved columns and applies f to
// each. Column c is the View at offset c with stride period. Ciphers whose
// unit of work is a position modulo the period (Vigenère) use it for both
// directions.
func Columns(buf *alphabet.Buffer, period int, f func(col int, v alphabet.View)) {
	for col := range period {
		f(col, buf.Column(col, period))
	}
}

// PermuteColumns moves column c of buf to column perm[c]. The length of buf
// must be a multiple of len(perm), and perm must be a permutation of
// 0..len(perm)-1.
func PermuteColumns(buf *alphabet.Buffer, perm []int) {
	k := len(perm)
	if k == 0 || buf.Len() == 0 {
		return
	}
	if buf.Len()%k != 0 {
		panic(fmt.Sprintf("cipher: permuting %d columns of a %d symbol buffer", k, buf.Len()))
	}
	src := buf.Clone()
	for c, dst := range perm {
		buf.Column(dst, k).CopyFrom(src.Column(c, k))
	}
}

// ranks replaces each value by its rank among values: the smallest becomes
// 0, the next 1, and so on. Values must be distinct.
func ranks(values []int) []int {
	out := make([]int, len(values))
	for i, v := range values {
		for _, w := range values {
			if w < v {
				out[i]++
			}
		}
	}
	return out
}

// inverse returns the inverse of the permutation perm.
func inverse(perm []int) []int {
	out := make([]int, len(perm))
	for i, p := range perm {
		out[p] = i
	}
	return out
}
