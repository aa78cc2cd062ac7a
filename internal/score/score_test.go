package score

import (
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/quadgram"
)

const (
	english   = "SINGLONGHERWAYSIZEWAITEDENDMUTUALMISSEDMYSELFTHELITTLESISTERONESOINPOINTEDORCHICKENCHEEREDNEITHERSPIRITSINVITEDMARIANNEANDHIMLAUGHTER"
	gibberish = "WKJGGTOLIOTBBZXFPJCRDNCWWIAODDBRPFPSIAVEIXVPKTAFDFBVPFZEWWBLNMZSLZFIWKFUWGOIDMFGMYVITNKLIISPJCMMHROJQWPNXJOZPQTNIRULXXKXBACQ"
)

func newScorer(t *testing.T, m Method) *Scorer {
	t.Helper()
	table, err := quadgram.Builtin()
	require.NoError(t, err)
	s, err := NewScorer(m, table)
	require.NoError(t, err)
	return s
}

func TestEnglishScoresHigher(t *testing.T) {
	for _, m := range Methods() {
		t.Run(m.String(), func(t *testing.T) {
			s := newScorer(t, m)
			e := s.Score(alphabet.MustFromText(english))
			g := s.Score(alphabet.MustFromText(gibberish))
			assert.True(t, e.Valid())
			assert.True(t, g.Valid())
			assert.Greater(t, e, g)
		})
	}
}

func TestKnownValues(t *testing.T) {
	buf := alphabet.MustFromText("Rust is the best programming language")

	chi := newScorer(t, ChiSquared).Score(buf)
	assert.InDelta(t, -29.514280393617323, float64(chi), 1e-9)

	ioc := newScorer(t, IOC).Score(buf)
	assert.InDelta(t, -(1.73 - 1.310483870967742), float64(ioc), 1e-9)
}

func TestUnscoreableIsMin(t *testing.T) {
	empty := alphabet.MustFromText("")
	one := alphabet.MustFromText("a")

	for _, m := range Methods() {
		s := newScorer(t, m)
		assert.Equal(t, Min, s.Score(empty), m.String())
		assert.False(t, s.Score(empty).Valid())
	}
	assert.Equal(t, Min, newScorer(t, IOC).Score(one))
}

func TestOfMapsNaN(t *testing.T) {
	assert.Equal(t, Min, Of(math.NaN()))
	assert.Equal(t, Score(-3), Of(-3))
}

func TestTotalOrder(t *testing.T) {
	scores := []Score{Of(-1), Min, Of(math.NaN()), Of(2), Of(-100)}
	slices.SortFunc(scores, Score.Compare)
	assert.Equal(t, []Score{Min, Min, -100, -1, 2}, scores)
}

func TestNewScorer(t *testing.T) {
	_, err := NewScorer(Quadgrams, nil)
	assert.ErrorIs(t, err, ErrMissingTable)

	_, err = NewScorer(Method(42), nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	s, err := NewScorer(ChiSquared, nil)
	require.NoError(t, err)
	assert.Equal(t, ChiSquared, s.Method())

	// A synthetic table stands in for a trained one.
	s, err = NewScorer(Quadgrams, quadgram.New(-2))
	require.NoError(t, err)
	assert.InDelta(t, -2.0*2/5, float64(s.Score(alphabet.MustFromText("abcde"))), 1e-9)
}

func TestParseMethod(t *testing.T) {
	tests := map[string]Method{
		"quadgrams":   Quadgrams,
		"Quad":        Quadgrams,
		"chi":         ChiSquared,
		"chi-squared": ChiSquared,
		" IOC ":       IOC,
	}
	for in, want := range tests {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMethod("bigrams")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestMethodJSON(t *testing.T) {
	var v struct {
		Method Method `json:"method"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"method":"chi"}`), &v))
	assert.Equal(t, ChiSquared, v.Method)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"chi"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"method":"nope"}`), &v))
}

func TestScoreString(t *testing.T) {
	assert.Equal(t, "-inf", Min.String())
	assert.Equal(t, "-2.5000", Score(-2.5).String())
}
