package cipher

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/64/kaiser/internal/alphabet"
)

// Transposition is a columnar transposition. The text is cut into rows of k
// symbols and, within every row, the symbol in column c moves to column
// order[c]. A trailing partial row of r symbols is permuted by the ranks of
// the first r entries of order.
type Transposition struct {
	order []int
}

// NewTransposition builds a key from column ranks. Any distinct integers
// are accepted; only their relative order matters.
func NewTransposition(columns []int) (Transposition, error) {
	if len(columns) == 0 {
		return Transposition{}, invalidKey("transposition key is empty")
	}
	seen := make(map[int]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return Transposition{}, invalidKey("transposition key repeats column %d", c)
		}
		seen[c] = true
	}
	return Transposition{order: ranks(columns)}, nil
}

// ParseTransposition parses comma-separated column numbers such as "3,1,2".
func ParseTransposition(s string) (Transposition, error) {
	fields := strings.Split(s, ",")
	cols := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return Transposition{}, invalidKey("transposition column %q is not an integer", f)
		}
		cols = append(cols, n)
	}
	return NewTransposition(cols)
}

// Period returns the number of columns.
func (k Transposition) Period() int { return len(k.order) }

func (k Transposition) Encrypt(buf *alphabet.Buffer) {
	full, tail := k.split(buf)
	PermuteColumns(full, k.order)
	PermuteColumns(tail, ranks(k.order[:tail.Len()]))
}

func (k Transposition) Decrypt(buf *alphabet.Buffer) {
	full, tail := k.split(buf)
	PermuteColumns(full, inverse(k.order))
	PermuteColumns(tail, inverse(ranks(k.order[:tail.Len()])))
}

// split returns the complete rows of buf and the trailing partial row.
func (k Transposition) split(buf *alphabet.Buffer) (full, tail *alphabet.Buffer) {
	n := buf.Len() - buf.Len()%len(k.order)
	return buf.Slice(0, n), buf.Slice(n, buf.Len())
}

func (k Transposition) Equal(other Transposition) bool { return slices.Equal(k.order, other.order) }

// String returns the 1-based column order, comma separated.
func (k Transposition) String() string {
	parts := make([]string, len(k.order))
	for i, o := range k.order {
		parts[i] = strconv.Itoa(o + 1)
	}
	return strings.Join(parts, ",")
}

// TranspositionSpace holds every column order for one column count.
type TranspositionSpace struct {
	columns int
}

// NewTranspositionSpace returns the space of keys with the given number of
// columns.
func NewTranspositionSpace(columns int) (TranspositionSpace, error) {
	if columns < 1 {
		return TranspositionSpace{}, invalidShape("transposition column count %d, need at least 1", columns)
	}
	return TranspositionSpace{columns: columns}, nil
}

// Columns returns the column count of the space.
func (s TranspositionSpace) Columns() int { return s.columns }

func (s TranspositionSpace) Random(rng *rand.Rand) Transposition {
	return Transposition{order: rng.Perm(s.columns)}
}

// Tweak swaps two columns. A single column key has no neighbour and is
// returned unchanged.
func (s TranspositionSpace) Tweak(key Transposition, rng *rand.Rand) Transposition {
	order := slices.Clone(key.order)
	if len(order) < 2 {
		return Transposition{order: order}
	}
	i, j := distinctPair(len(order), rng)
	order[i], order[j] = order[j], order[i]
	return Transposition{order: order}
}

func (s TranspositionSpace) First() Transposition {
	order := make([]int, s.columns)
	for i := range order {
		order[i] = i
	}
	return Transposition{order: order}
}

func (s TranspositionSpace) Next(key Transposition) (Transposition, bool) {
	order := slices.Clone(key.order)
	if !nextPermutation(order) {
		return Transposition{}, false
	}
	return Transposition{order: order}, true
}
