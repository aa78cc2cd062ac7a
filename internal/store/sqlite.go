package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store errors
var (
	// ErrNotFound indicates no run matches the requested ID.
	ErrNotFound = errors.New("store: run not found")

	// ErrAmbiguous indicates an ID prefix matching more than one run.
	ErrAmbiguous = errors.New("store: ambiguous run ID prefix")

	// ErrCorrupted indicates a run whose stored digest does not match its
	// contents.
	ErrCorrupted = errors.New("store: run digest mismatch")
)

// Store represents the SQLite run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies migrations.
// busyTimeout bounds how long a write waits for another kaiser process.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=%d",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := MigrateDB(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := os.Chmod(path, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NewRunID returns a fresh time-ordered run ID.
func NewRunID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// SaveRun records run and its results in one transaction and sets
// run.Digest. A zero run.ID is replaced by NewRunID.
func (s *Store) SaveRun(ctx context.Context, run *Run, results []Result) error {
	if run.ID == uuid.Nil {
		run.ID = NewRunID()
	}
	run.Digest = computeDigest(run, results)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, cipher, engine, method, shape, seed, capacity, ciphertext_hash, ciphertext_len, evaluated, climbs, started_ns, elapsed_ns, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Source, run.Cipher, run.Engine, run.Method, run.Shape,
		int64(run.Seed), run.Capacity, run.CiphertextHash[:], run.CiphertextLen,
		run.Evaluated, run.Climbs, run.StartedAt.UnixNano(), int64(run.Elapsed), run.Digest[:],
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, rank, cipher_key, score, plaintext)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, run.ID.String(), r.Rank, r.Key, r.Score, r.Plaintext); err != nil {
			return fmt.Errorf("insert result %d: %w", r.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const runColumns = `id, source, cipher, engine, method, shape, seed, capacity, ciphertext_hash, ciphertext_len, evaluated, climbs, started_ns, elapsed_ns, digest`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r                  Run
		id                 string
		seed               int64
		startedNs, elapsed int64
		ctHash, digest     []byte
	)
	err := row.Scan(&id, &r.Source, &r.Cipher, &r.Engine, &r.Method, &r.Shape, &seed, &r.Capacity,
		&ctHash, &r.CiphertextLen, &r.Evaluated, &r.Climbs, &startedNs, &elapsed, &digest)
	if err != nil {
		return nil, err
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", id, err)
	}
	r.Seed = uint64(seed)
	r.StartedAt = time.Unix(0, startedNs)
	r.Elapsed = time.Duration(elapsed)
	copy(r.CiphertextHash[:], ctHash)
	copy(r.Digest[:], digest)
	return &r, nil
}

// History returns the most recent runs, newest first, each with its best
// result. limit <= 0 returns every run.
func (s *Store) History(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_ns DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, Summary{Run: *run})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range out {
		best, err := s.results(ctx, out[i].ID, 1)
		if err != nil {
			return nil, err
		}
		if len(best) > 0 {
			out[i].Best = &best[0]
		}
	}
	return out, nil
}

// Run returns a stored run and its results. It fails with ErrCorrupted,
// alongside the data, when the stored digest does not match.
func (s *Store) Run(ctx context.Context, id uuid.UUID) (*Run, []Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id.String())
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, nil, fmt.Errorf("get run: %w", err)
	}

	results, err := s.results(ctx, id, -1)
	if err != nil {
		return nil, nil, err
	}
	if computeDigest(run, results) != run.Digest {
		return run, results, fmt.Errorf("%w: %s", ErrCorrupted, id)
	}
	return run, results, nil
}

func (s *Store) results(ctx context.Context, id uuid.UUID, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rank, cipher_key, score, plaintext
		FROM results
		WHERE run_id = ?
		ORDER BY rank ASC
		LIMIT ?`, id.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Rank, &r.Key, &r.Score, &r.Plaintext); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// Resolve expands a full run ID or a unique prefix of one.
func (s *Store) Resolve(ctx context.Context, prefix string) (uuid.UUID, error) {
	if id, err := uuid.Parse(prefix); err == nil {
		return id, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE id LIKE ? || '%' ESCAPE '\' LIMIT 2`, escapeLike(strings.ToLower(prefix)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve run: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return uuid.Nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("iterate run ids: %w", err)
	}

	switch len(ids) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: %q", ErrNotFound, prefix)
	case 1:
		return uuid.Parse(ids[0])
	default:
		return uuid.Nil, fmt.Errorf("%w: %q", ErrAmbiguous, prefix)
	}
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := range len(s) {
		switch c := s[i]; c {
		case '%', '_', '\\':
			out = append(out, '\\', c)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// Prune deletes all but the newest keep runs and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_ns DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
