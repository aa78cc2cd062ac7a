// Package fsutil writes files atomically under an advisory lock and reads
// bounded input.
package fsutil

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File permission constants
const (
	// PermFile is the permission for reports, tables and metrics files.
	PermFile os.FileMode = 0644

	// PermPrivateFile is the permission for configuration and history files.
	PermPrivateFile os.FileMode = 0600

	// PermDir is the permission for directories created on demand.
	PermDir os.FileMode = 0750
)

// MaxInput bounds how much ciphertext ReadInput accepts.
const MaxInput = 64 << 20

// File operation errors
var (
	ErrAtomicWriteFailed = errors.New("fsutil: atomic write failed")
	ErrTempFileFailed    = errors.New("fsutil: temporary file creation failed")
	ErrFileTooLarge      = errors.New("fsutil: input exceeds maximum size")
)

// AtomicWriter writes to a temporary file beside path and renames it into
// place on Commit. Readers never observe a partial file.
type AtomicWriter struct {
	path     string
	tempFile *os.File
	tempPath string
}

// NewAtomicWriter creates the temporary file for path.
func NewAtomicWriter(path string, perm os.FileMode) (*AtomicWriter, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), PermDir); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tempPath := cleanPath + ".tmp." + randomSuffix()
	tempFile, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTempFileFailed, err)
	}

	return &AtomicWriter{
		path:     cleanPath,
		tempFile: tempFile,
		tempPath: tempPath,
	}, nil
}

// Write writes data to the temporary file.
func (w *AtomicWriter) Write(p []byte) (n int, err error) {
	return w.tempFile.Write(p)
}

// Commit syncs the temporary file and renames it over the target.
func (w *AtomicWriter) Commit() error {
	if err := w.tempFile.Sync(); err != nil {
		w.Abort()
		return fmt.Errorf("sync: %w", err)
	}
	if err := w.tempFile.Close(); err != nil {
		os.Remove(w.tempPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(w.tempPath, w.path); err != nil {
		os.Remove(w.tempPath)
		return fmt.Errorf("%w: %v", ErrAtomicWriteFailed, err)
	}
	return nil
}

// Abort discards the temporary file.
func (w *AtomicWriter) Abort() {
	w.tempFile.Close()
	os.Remove(w.tempPath)
}

func randomSuffix() string {
	var b [8]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// WriteFile writes data to path atomically while holding the lock for path.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return WriteFunc(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteFunc streams fn's output to path atomically while holding the lock
// for path. Nothing is written if fn fails.
func WriteFunc(path string, perm os.FileMode, fn func(io.Writer) error) error {
	unlock, err := Lock(path)
	if err != nil {
		return err
	}
	defer unlock()

	writer, err := NewAtomicWriter(path, perm)
	if err != nil {
		return err
	}
	if err := fn(writer); err != nil {
		writer.Abort()
		return err
	}
	return writer.Commit()
}

// Lock takes an exclusive advisory lock on a sibling "<path>.lock" file and
// returns the function that releases it. Concurrent kaiser processes writing
// the same report, table or metrics file serialize on it.
func Lock(path string) (unlock func() error, err error) {
	lockPath := filepath.Clean(path) + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), PermDir); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	f, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE, PermPrivateFile)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", lockPath, err)
	}
	return func() error {
		err := unlockFile(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}

// ReadInput reads all of r, failing with ErrFileTooLarge past max bytes.
func ReadInput(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, max)
	}
	return data, nil
}

// ReadFile opens path and reads it with ReadInput.
func ReadFile(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadInput(f, max)
}
