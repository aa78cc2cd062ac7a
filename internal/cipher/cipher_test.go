package cipher

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/64/kaiser/internal/alphabet"
)

var roundTripTexts = []string{
	"",
	"a",
	"Hello world!",
	"HELLOWORLD",
	"The quick brown fox jumps over the lazy dog, twice; then it naps.",
	"odd length text",
}

func assertRoundTrip(t *testing.T, c Cipher, text string) {
	t.Helper()
	plain := alphabet.MustFromText(text)
	buf := plain.Clone()
	c.Encrypt(buf)
	c.Decrypt(buf)
	assert.True(t, plain.Equal(buf), "%v: round trip of %q gave %q", c, text, buf.Letters())
	assert.Equal(t, text, buf.Render())
}

func encryptText(c Cipher, text string) string {
	buf := alphabet.MustFromText(text)
	c.Encrypt(buf)
	return buf.Render()
}

func decryptText(c Cipher, text string) string {
	buf := alphabet.MustFromText(text)
	c.Decrypt(buf)
	return buf.Render()
}

func TestCaesarScenario(t *testing.T) {
	c := NewCaesar(5)
	assert.Equal(t, "Mjqqt btwqi!", encryptText(c, "Hello world!"))
	assert.Equal(t, "Hello world!", decryptText(c, "Mjqqt btwqi!"))
}

func TestParseCaesar(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"5", 5},
		{"31", 5},
		{"-1", 25},
		{"F", 5},
		{"f", 5},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			k, err := ParseCaesar(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, k.Shift())
		})
	}

	_, err := ParseCaesar("five")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestVigenereScenario(t *testing.T) {
	k, err := ParseVigenere("KEY")
	require.NoError(t, err)
	assert.Equal(t, 3, k.Period())
	assert.Equal(t, "KEY", k.String())
	assert.Equal(t, "Rijvs uyvjn!", encryptText(k, "Hello world!"))
	assert.Equal(t, "Hello world!", decryptText(k, "Rijvs uyvjn!"))
}

func TestParseVigenereRejects(t *testing.T) {
	for _, in := range []string{"", "K3Y", "two words"} {
		_, err := ParseVigenere(in)
		assert.ErrorIs(t, err, ErrInvalidKey, in)
	}
}

func TestTranspositionScenario(t *testing.T) {
	k, err := ParseTransposition("2,1")
	require.NoError(t, err)
	assert.Equal(t, "EHLLWORODL", encryptText(k, "HELLOWORLD"))
	assert.Equal(t, "HELLOWORLD", decryptText(k, "EHLLWORODL"))
	assert.Equal(t, "2,1", k.String())
}

func TestTranspositionPartialRow(t *testing.T) {
	k, err := ParseTransposition("3,1,2")
	require.NoError(t, err)

	// Rows ABC DEF and tail GH. Column c moves to rank(key[c]), so the tail
	// is ordered by the ranks of (3,1), which swaps it.
	assert.Equal(t, "BCAEFDHG", encryptText(k, "ABCDEFGH"))
	assertRoundTrip(t, k, "ABCDEFGH")
}

func TestTranspositionNormalisesColumns(t *testing.T) {
	a, err := ParseTransposition("30, 10, 20")
	require.NoError(t, err)
	b, err := NewTransposition([]int{2, 0, 1})
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Equal(t, "3,1,2", a.String())
}

func TestParseTranspositionRejects(t *testing.T) {
	for _, in := range []string{"", "1,1", "1,x"} {
		_, err := ParseTransposition(in)
		assert.ErrorIs(t, err, ErrInvalidKey, in)
	}
}

func TestSubstitutionScenario(t *testing.T) {
	k, err := SubstitutionFromKeyword("ZEBRAS")
	require.NoError(t, err)
	assert.Equal(t, "Daiil vloir!", encryptText(k, "Hello world!"))
	assert.Equal(t, "Hello world!", decryptText(k, "Daiil vloir!"))
}

func TestSubstitutionConstructorsAgree(t *testing.T) {
	fromWord, err := SubstitutionFromKeyword("ZEBRAS")
	require.NoError(t, err)
	fromAlphabet, err := SubstitutionFromAlphabet("ZEBRASCDFGHIJKLMNOPQTUVWXY")
	require.NoError(t, err)
	fromFullWord, err := SubstitutionFromKeyword("ZEBRASCDFGHIJKLMNOPQTUVWXY")
	require.NoError(t, err)

	assert.True(t, fromWord.Equal(fromAlphabet))
	assert.True(t, fromAlphabet.Equal(fromFullWord))
	assert.Equal(t, "ZEBRASCDFGHIJKLMNOPQTUVWXY", fromWord.String())
}

func TestSubstitutionFromAlphabetRejects(t *testing.T) {
	_, err := SubstitutionFromAlphabet("ABC")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = SubstitutionFromAlphabet("AACDEFGHIJKLMNOPQRSTUVWXYZ")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAffine(t *testing.T) {
	k, err := NewAffine(5, 8)
	require.NoError(t, err)
	assert.Equal(t, "Rclla oaplx", encryptText(k, "Hello world"))
	assert.Equal(t, "5,8", k.String())

	for _, a := range []int{0, 2, 13, 26} {
		_, err := NewAffine(a, 1)
		assert.ErrorIs(t, err, ErrInvalidKey, "a=%d", a)
	}

	p, err := ParseAffine("5, 8")
	require.NoError(t, err)
	assert.True(t, k.Equal(p))
	_, err = ParseAffine("5")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestRoundTripAllCiphers(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	vig, err := NewVigenereSpace(4)
	require.NoError(t, err)
	trans, err := NewTranspositionSpace(5)
	require.NoError(t, err)

	for range 20 {
		keys := []Cipher{
			CaesarSpace{}.Random(rng),
			AffineSpace{}.Random(rng),
			vig.Random(rng),
			SubstitutionSpace{}.Random(rng),
			trans.Random(rng),
		}
		for _, k := range keys {
			for _, text := range roundTripTexts {
				assertRoundTrip(t, k, text)
			}
		}
	}
}

func TestInvalidShapes(t *testing.T) {
	_, err := NewVigenereSpace(0)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = NewTranspositionSpace(0)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func countKeys[K Key[K]](t *testing.T, space KeySpace[K]) int {
	t.Helper()
	seen := map[string]bool{}
	for k := range Keys(space) {
		require.False(t, seen[k.String()], "key %v enumerated twice", k)
		seen[k.String()] = true
	}
	return len(seen)
}

func TestEnumeration(t *testing.T) {
	assert.Equal(t, 26, countKeys[Caesar](t, CaesarSpace{}))
	assert.Equal(t, 12*26, countKeys[Affine](t, AffineSpace{}))

	vig, err := NewVigenereSpace(2)
	require.NoError(t, err)
	assert.Equal(t, 26*26, countKeys[Vigenere](t, vig))

	trans, err := NewTranspositionSpace(4)
	require.NoError(t, err)
	assert.Equal(t, 24, countKeys[Transposition](t, trans))
}

func TestEnumerationOrder(t *testing.T) {
	var shifts []int
	for k := range Keys[Caesar](CaesarSpace{}) {
		shifts = append(shifts, k.Shift())
	}
	require.Len(t, shifts, 26)
	for i, s := range shifts {
		assert.Equal(t, i, s)
	}

	vig, err := NewVigenereSpace(2)
	require.NoError(t, err)
	k, ok := vig.Next(mustVigenere(t, "AZ"))
	require.True(t, ok)
	assert.Equal(t, "BA", k.String())
	_, ok = vig.Next(mustVigenere(t, "ZZ"))
	assert.False(t, ok)
}

func TestSubstitutionNext(t *testing.T) {
	first := SubstitutionSpace{}.First()
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ", first.String())

	next, ok := SubstitutionSpace{}.Next(first)
	require.True(t, ok)
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRSTUVWXZY", next.String())

	last, err := SubstitutionFromAlphabet("ZYXWVUTSRQPONMLKJIHGFEDCBA")
	require.NoError(t, err)
	_, ok = SubstitutionSpace{}.Next(last)
	assert.False(t, ok)
}

func TestTweakChangesKey(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	vig, err := NewVigenereSpace(3)
	require.NoError(t, err)
	trans, err := NewTranspositionSpace(6)
	require.NoError(t, err)

	for range 200 {
		c := CaesarSpace{}.Random(rng)
		assert.False(t, c.Equal(CaesarSpace{}.Tweak(c, rng)))

		a := AffineSpace{}.Random(rng)
		assert.False(t, a.Equal(AffineSpace{}.Tweak(a, rng)))

		v := vig.Random(rng)
		tv := vig.Tweak(v, rng)
		assert.False(t, v.Equal(tv))
		assert.Equal(t, 1, hamming(v.shifts, tv.shifts))

		s := SubstitutionSpace{}.Random(rng)
		assert.False(t, s.Equal(SubstitutionSpace{}.Tweak(s, rng)))

		p := trans.Random(rng)
		assert.False(t, p.Equal(trans.Tweak(p, rng)))
	}
}

func TestRandomSubstitutionIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for range 50 {
		k := SubstitutionSpace{}.Random(rng)
		var seen [alphabet.Size]bool
		for _, s := range k.fwd {
			require.False(t, seen[s])
			seen[s] = true
		}
	}
}

func TestTweakDoesNotAliasParent(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	vig, err := NewVigenereSpace(5)
	require.NoError(t, err)
	parent := vig.Random(rng)
	before := parent.String()
	for range 10 {
		vig.Tweak(parent, rng)
	}
	assert.Equal(t, before, parent.String())
}

func mustVigenere(t *testing.T, word string) Vigenere {
	t.Helper()
	k, err := ParseVigenere(word)
	require.NoError(t, err)
	return k
}

func hamming(a, b []alphabet.Symbol) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}
