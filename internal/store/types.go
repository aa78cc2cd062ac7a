// Package store keeps a SQLite history of crack runs and their frontiers.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Run is one finished crack.
type Run struct {
	ID uuid.UUID
	// Source names the ciphertext: a file path, or "-" for stdin.
	Source         string
	Cipher         string
	Engine         string
	Method         string
	Shape          int
	Seed           uint64
	Capacity       int
	CiphertextHash [32]byte
	CiphertextLen  int
	Evaluated      int
	Climbs         int
	StartedAt      time.Time
	Elapsed        time.Duration
	// Digest covers every field above and the run's results.
	Digest [32]byte
}

// Result is one frontier entry of a run, best first from rank 1.
type Result struct {
	Rank      int
	Key       string
	Score     float64
	Plaintext string
}

// Summary is a run as listed by History, with its best result.
type Summary struct {
	Run
	Best *Result
}
