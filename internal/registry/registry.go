// Package registry maps cipher names to their key parsers and key spaces.
//
// The cipher and search packages are generic over the key type. Callers
// that pick a cipher by name at run time, such as the command line, go
// through an Entry, which hides the key type behind strings and plain
// values.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/cipher"
	"github.com/64/kaiser/internal/score"
	"github.com/64/kaiser/internal/search"
)

// Registry errors
var (
	// ErrUnknownCipher indicates a cipher name that is not registered.
	ErrUnknownCipher = errors.New("registry: unknown cipher")

	// ErrUnknownEngine indicates an engine name other than brute or hillclimb.
	ErrUnknownEngine = errors.New("registry: unknown engine")

	// ErrNotBruteForceable indicates brute force requested on a key space
	// too large to enumerate.
	ErrNotBruteForceable = errors.New("registry: key space too large for brute force")
)

// Request describes one crack.
type Request struct {
	Ciphertext *alphabet.Buffer
	// Engine is search.EngineBrute or search.EngineHillClimb. Empty picks
	// the cipher's default.
	Engine string
	// Shape is the key length or column count for ciphers that have one.
	Shape int
	// Workers above one runs independent hill climbs in parallel.
	Workers int

	search.HillClimbOptions
}

// Candidate is a search result with its key rendered as text.
type Candidate struct {
	Rank      int
	Key       string
	Score     score.Score
	Plaintext *alphabet.Buffer
}

// Outcome is a finished crack.
type Outcome struct {
	Cipher     string
	Engine     string
	Candidates []Candidate
	Evaluated  int
	Climbs     int
	Elapsed    time.Duration
}

// Entry describes one cipher.
type Entry struct {
	Name        string
	Description string
	// KeyHelp explains the key syntax accepted by Parse.
	KeyHelp string
	// ShapeHelp names the shape parameter, or is empty when the cipher has
	// none.
	ShapeHelp string
	// DefaultShape is used when a Request leaves Shape at zero.
	DefaultShape int
	// DefaultEngine is the engine used when a Request names none.
	DefaultEngine string
	// BruteForce reports whether the key space is small enough to
	// enumerate.
	BruteForce bool

	Parse func(key string) (cipher.Cipher, error)
	crack func(ctx context.Context, req Request) (Outcome, error)
}

// Crack searches for the key of req.Ciphertext.
func (e Entry) Crack(ctx context.Context, req Request) (Outcome, error) {
	if req.Engine == "" {
		req.Engine = e.DefaultEngine
	}
	if req.Engine != search.EngineBrute && req.Engine != search.EngineHillClimb {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownEngine, req.Engine)
	}
	if req.Engine == search.EngineBrute && !e.BruteForce {
		return Outcome{}, fmt.Errorf("%w: %s: %w", ErrNotBruteForceable, e.Name, cipher.ErrNotEnumerable)
	}
	if req.Shape == 0 {
		req.Shape = e.DefaultShape
	}
	out, err := e.crack(ctx, req)
	out.Cipher = e.Name
	out.Engine = req.Engine
	return out, err
}

// crackWith runs the requested engine over space and flattens the result.
func crackWith[K cipher.Key[K]](ctx context.Context, req Request, space cipher.KeySpace[K]) (Outcome, error) {
	var (
		out search.Outcome[K]
		err error
	)
	switch {
	case req.Engine == search.EngineBrute:
		out, err = search.BruteForce(ctx, req.Ciphertext, space, req.Options)
	case req.Workers > 1:
		out, err = search.ParallelHillClimb(ctx, req.Workers, req.Ciphertext, space, req.HillClimbOptions)
	default:
		out, err = search.HillClimb(ctx, req.Ciphertext, space, req.HillClimbOptions)
	}

	flat := Outcome{Evaluated: out.Evaluated, Climbs: out.Climbs, Elapsed: out.Elapsed}
	if out.Frontier != nil {
		for i, r := range out.Frontier.All() {
			flat.Candidates = append(flat.Candidates, Candidate{
				Rank:      i + 1,
				Key:       r.Key.String(),
				Score:     r.Score,
				Plaintext: r.Plaintext,
			})
		}
	}
	return flat, err
}

func parser[K cipher.Key[K]](parse func(string) (K, error)) func(string) (cipher.Cipher, error) {
	return func(s string) (cipher.Cipher, error) {
		k, err := parse(s)
		if err != nil {
			return nil, err
		}
		return k, nil
	}
}

var entries = map[string]Entry{
	"caesar": {
		Name:          "caesar",
		Description:   "shift every letter by a fixed amount",
		KeyHelp:       "shift as an integer (5) or a letter (F)",
		DefaultEngine: search.EngineBrute,
		BruteForce:    true,
		Parse:         parser(cipher.ParseCaesar),
		crack: func(ctx context.Context, req Request) (Outcome, error) {
			return crackWith[cipher.Caesar](ctx, req, cipher.CaesarSpace{})
		},
	},
	"affine": {
		Name:          "affine",
		Description:   "map x to a*x+b modulo 26",
		KeyHelp:       "a,b with a coprime to 26 (5,8)",
		DefaultEngine: search.EngineBrute,
		BruteForce:    true,
		Parse:         parser(cipher.ParseAffine),
		crack: func(ctx context.Context, req Request) (Outcome, error) {
			return crackWith[cipher.Affine](ctx, req, cipher.AffineSpace{})
		},
	},
	"vigenere": {
		Name:          "vigenere",
		Description:   "shift each column by the letter of a repeating keyword",
		KeyHelp:       "keyword (LEMON)",
		ShapeHelp:     "keyword length",
		DefaultShape:  5,
		DefaultEngine: search.EngineHillClimb,
		BruteForce:    true,
		Parse:         parser(cipher.ParseVigenere),
		crack: func(ctx context.Context, req Request) (Outcome, error) {
			space, err := cipher.NewVigenereSpace(req.Shape)
			if err != nil {
				return Outcome{}, err
			}
			return crackWith[cipher.Vigenere](ctx, req, space)
		},
	},
	"substitution": {
		Name:          "substitution",
		Description:   "replace each letter through a permuted alphabet",
		KeyHelp:       "keyword (ZEBRAS) or full 26-letter cipher alphabet",
		DefaultEngine: search.EngineHillClimb,
		Parse:         parser(cipher.ParseSubstitution),
		crack: func(ctx context.Context, req Request) (Outcome, error) {
			return crackWith[cipher.Substitution](ctx, req, cipher.SubstitutionSpace{})
		},
	},
	"transposition": {
		Name:          "transposition",
		Description:   "reorder the columns of each row",
		KeyHelp:       "comma-separated column order (3,1,2)",
		ShapeHelp:     "column count",
		DefaultShape:  5,
		DefaultEngine: search.EngineHillClimb,
		BruteForce:    true,
		Parse:         parser(cipher.ParseTransposition),
		crack: func(ctx context.Context, req Request) (Outcome, error) {
			space, err := cipher.NewTranspositionSpace(req.Shape)
			if err != nil {
				return Outcome{}, err
			}
			return crackWith[cipher.Transposition](ctx, req, space)
		},
	},
}

// Lookup returns the Entry for name. Names are case-insensitive.
func Lookup(name string) (Entry, error) {
	e, ok := entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownCipher, name, strings.Join(Names(), ", "))
	}
	return e, nil
}

// Names lists the registered cipher names in order.
func Names() []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
