package fsutil

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	data := []byte("frontier")

	if err := WriteFile(path, data, PermPrivateFile); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("file contents mismatch: got %q, want %q", got, data)
	}

	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != PermPrivateFile {
		t.Errorf("file permissions = %04o, want %04o", info.Mode().Perm(), PermPrivateFile)
	}
}

func TestAtomicReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	if err := WriteFile(path, []byte("initial"), PermFile); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := WriteFile(path, []byte("updated"), PermFile); err != nil {
		t.Fatalf("WriteFile update failed: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "updated" {
		t.Errorf("got %q, want updated", got)
	}
	matches, _ := filepath.Glob(path + ".tmp.*")
	if len(matches) > 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestWriteFuncFailureKeepsOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.bin")
	if err := WriteFile(path, []byte("original"), PermFile); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	boom := errors.New("boom")
	err := WriteFunc(path, PermFile, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Errorf("failed write replaced the file: %q", got)
	}
	matches, _ := filepath.Glob(path + ".tmp.*")
	if len(matches) > 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.prom")
	payloads := []string{strings.Repeat("a", 4096), strings.Repeat("b", 4096), strings.Repeat("c", 4096)}

	var wg sync.WaitGroup
	for _, p := range payloads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := WriteFile(path, []byte(p), PermFile); err != nil {
				t.Errorf("WriteFile failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	found := false
	for _, p := range payloads {
		if string(got) == p {
			found = true
		}
	}
	if !found {
		t.Errorf("file holds a mix of writes (%d bytes)", len(got))
	}
}

func TestReadInput(t *testing.T) {
	data, err := ReadInput(strings.NewReader("ATTACK AT DAWN"), 14)
	if err != nil {
		t.Fatalf("ReadInput failed: %v", err)
	}
	if string(data) != "ATTACK AT DAWN" {
		t.Errorf("got %q", data)
	}

	_, err = ReadInput(strings.NewReader("ATTACK AT DAWN!"), 14)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ct.txt")
	if err := os.WriteFile(path, []byte("Wkh txlfn eurzq ira"), 0600); err != nil {
		t.Fatal(err)
	}
	data, err := ReadFile(path, MaxInput)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "Wkh txlfn eurzq ira" {
		t.Errorf("got %q", data)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing"), MaxInput); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestIsTerminalOnRegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "plain")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("regular file reported as a terminal")
	}
}

func TestIsTerminalOnPipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	if IsTerminal(r) || IsTerminal(w) {
		t.Error("pipe reported as a terminal")
	}
}
