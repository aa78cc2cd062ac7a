// Package report renders a crack outcome as a JSON document and validates
// documents against the embedded crack-report schema.
package report

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/registry"
)

// Version is the report format version.
const Version = 1

const schemaURL = "https://github.com/64/kaiser/schema/crack-report-v1.schema.json"

//go:embed schema/crack-report-v1.schema.json
var schemaJSON []byte

// ErrInvalidReport wraps schema validation failures.
var ErrInvalidReport = errors.New("report: document does not match schema")

// Report is the JSON form of one crack.
type Report struct {
	Version    int         `json:"version"`
	RunID      string      `json:"run_id"`
	Cipher     string      `json:"cipher"`
	Engine     string      `json:"engine"`
	Method     string      `json:"method"`
	Shape      int         `json:"shape,omitempty"`
	Ciphertext Ciphertext  `json:"ciphertext"`
	Search     Search      `json:"search"`
	Candidates []Candidate `json:"candidates"`
}

// Ciphertext identifies the input without repeating it.
type Ciphertext struct {
	Source  string `json:"source"`
	SHA256  string `json:"sha256"`
	Letters int    `json:"letters"`
}

// Search records how the frontier was produced.
type Search struct {
	Results   int       `json:"results"`
	Evaluated int       `json:"evaluated"`
	Climbs    int       `json:"climbs,omitempty"`
	Seed      uint64    `json:"seed,omitempty"`
	Workers   int       `json:"workers,omitempty"`
	ElapsedMS float64   `json:"elapsed_ms"`
	StartedAt time.Time `json:"started_at"`
}

// Candidate is one frontier entry.
type Candidate struct {
	Rank      int     `json:"rank"`
	Key       string  `json:"key"`
	Score     float64 `json:"score"`
	Plaintext string  `json:"plaintext"`
}

// Meta carries what the outcome itself does not know.
type Meta struct {
	RunID      uuid.UUID
	Source     string
	Method     string
	Shape      int
	Results    int
	Seed       uint64
	Workers    int
	Ciphertext *alphabet.Buffer
	StartedAt  time.Time
}

// New builds the report of out.
func New(out registry.Outcome, meta Meta) *Report {
	source := meta.Source
	if source == "" {
		source = "-"
	}
	r := &Report{
		Version: Version,
		RunID:   meta.RunID.String(),
		Cipher:  out.Cipher,
		Engine:  out.Engine,
		Method:  meta.Method,
		Shape:   meta.Shape,
		Ciphertext: Ciphertext{
			Source:  source,
			SHA256:  CiphertextHash(meta.Ciphertext),
			Letters: meta.Ciphertext.Len(),
		},
		Search: Search{
			Results:   meta.Results,
			Evaluated: out.Evaluated,
			Climbs:    out.Climbs,
			Seed:      meta.Seed,
			Workers:   meta.Workers,
			ElapsedMS: float64(out.Elapsed.Microseconds()) / 1000,
			StartedAt: meta.StartedAt.UTC(),
		},
		Candidates: make([]Candidate, 0, len(out.Candidates)),
	}
	for _, c := range out.Candidates {
		r.Candidates = append(r.Candidates, Candidate{
			Rank:      c.Rank,
			Key:       c.Key,
			Score:     float64(c.Score),
			Plaintext: c.Plaintext.Render(),
		})
	}
	return r
}

// CiphertextSum is the SHA-256 of the buffer's original text.
func CiphertextSum(b *alphabet.Buffer) [32]byte {
	return sha256.Sum256([]byte(b.Original()))
}

// CiphertextHash is CiphertextSum in hex.
func CiphertextHash(b *alphabet.Buffer) string {
	sum := CiphertextSum(b)
	return hex.EncodeToString(sum[:])
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Validate checks a JSON document against the crack-report schema.
func Validate(data []byte) error {
	schema, err := compiled()
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return nil
}

// Marshal encodes r as indented JSON and validates the result.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write encodes r to w.
func (r *Report) Write(w io.Writer) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Read validates and decodes a report.
func Read(rd io.Reader) (*Report, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
