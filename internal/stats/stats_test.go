package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/quadgram"
)

const rustText = "Rust is the best programming language"

func TestLetterFrequencies(t *testing.T) {
	buf := alphabet.MustFromText(rustText)
	want := Frequencies{3, 1, 0, 0, 3, 0, 4, 1, 2, 0, 0, 1, 2, 2, 1, 1, 0, 3, 3, 3, 2, 0, 0, 0, 0, 0}
	assert.Equal(t, want, LetterFrequencies(buf))
	assert.Equal(t, buf.Len(), want.Total())
}

func TestIndexOfCoincidence(t *testing.T) {
	buf := alphabet.MustFromText(rustText)
	assert.InDelta(t, 1.310483870967742, IndexOfCoincidence(buf), 1e-12)
}

func TestChiSquared(t *testing.T) {
	buf := alphabet.MustFromText(rustText)
	assert.InDelta(t, 29.514280393617323, ChiSquared(buf), 1e-9)
}

func TestUndefinedStatistics(t *testing.T) {
	empty := alphabet.MustFromText("")
	one := alphabet.MustFromText("x")

	assert.True(t, math.IsNaN(IndexOfCoincidence(empty)))
	assert.True(t, math.IsNaN(IndexOfCoincidence(one)))
	assert.True(t, math.IsNaN(ChiSquared(empty)))
	assert.False(t, math.IsNaN(ChiSquared(one)))
}

func TestViewAndBufferAgree(t *testing.T) {
	buf := alphabet.MustFromText("Attack the east wall of the castle at dawn, then hold the gate.")
	whole := buf.Column(0, 1)

	assert.Equal(t, LetterFrequencies(buf), LetterFrequencies(whole))
	assert.Equal(t, ChiSquared(buf), ChiSquared(whole))
	assert.Equal(t, IndexOfCoincidence(buf), IndexOfCoincidence(whole))

	table, err := quadgram.Builtin()
	require.NoError(t, err)
	assert.InDelta(t, Quadgram(buf, table), Quadgram(whole, table), 1e-9)
}

func TestQuadgramSyntheticTable(t *testing.T) {
	table := quadgram.New(-5)
	table.Set(quadgram.Index(0, 1, 2, 3), -1)

	// ABCDE has windows ABCD (-1) and BCDE (-5), normalised by 5.
	assert.InDelta(t, -6.0/5, Quadgram(alphabet.MustFromText("ABCDE"), table), 1e-9)
	assert.Equal(t, 0.0, Quadgram(alphabet.MustFromText("abc"), table))
	assert.True(t, math.IsNaN(Quadgram(alphabet.MustFromText(""), table)))
}

func TestEnglishBeatsGibberish(t *testing.T) {
	table, err := quadgram.Builtin()
	require.NoError(t, err)

	english := alphabet.MustFromText(englishSample)
	gibberish := alphabet.MustFromText(gibberishSample)

	assert.Greater(t, Quadgram(english, table), Quadgram(gibberish, table))
	assert.Less(t, ChiSquared(english), ChiSquared(gibberish))
	assert.Less(t, math.Abs(EnglishIOC-IndexOfCoincidence(english)), math.Abs(EnglishIOC-IndexOfCoincidence(gibberish)))
}

func BenchmarkQuadgram(b *testing.B) {
	table, err := quadgram.Builtin()
	require.NoError(b, err)
	buf := alphabet.MustFromText(englishSample)
	b.ResetTimer()
	for b.Loop() {
		Quadgram(buf, table)
	}
}

func BenchmarkChiSquared(b *testing.B) {
	buf := alphabet.MustFromText(englishSample)
	for b.Loop() {
		ChiSquared(buf)
	}
}

const englishSample = "SINGLONGHERWAYSIZEWAITEDENDMUTUALMISSEDMYSELFTHELITTLE" +
	"SISTERONESOINPOINTEDORCHICKENCHEEREDNEITHERSPIRITSINVI" +
	"TEDMARIANNEANDHIMLAUGHTERCIVILITYFORMERLYHANDSOMESEXUS" +
	"EPROSPECTHENCEWEDOORSISGIVENRAPIDSCALEABOVEAMDIFFICULT" +
	"YEMRDELIVEREDBEHAVIOURBYANIFTHEIRWOMANCOULDDOWOUNDONYO" +
	"UFOLLYTASTEHOPEDTHEIRABOVEAREANDBUTATOURSELVESDIRECTIO"

const gibberishSample = "WKJGGTOLIOTBBZXFPJCRDNCWWIAODDBRPFPSIAVEIXVPKTAFDFBVPF" +
	"ZEWWBLNMZSLZFIWKFUWGOIDMFGMYVITNKLIISPJCMMHROJQWPNXJOZ" +
	"PQTNIRULXXKXBACQMYWXFIDTLAZTKQTOYCRXEGKUHKMUHUCTZHCWIK" +
	"AJNRRPARZXBWDWRMVZNLFXEBBMTHEQMUHRIOEQNELQIGGGGJYNZSLY" +
	"FXGTXUGOOBEUCSWGTFFRIBDVAKDHWVKNFKWJNLSIRIZERYDFDXKEGH" +
	"VTYMMESSAHEUIQXCGLETPGGTIYUUNPMFRNLMBKKAGEUDZMCTJIJDVR"
