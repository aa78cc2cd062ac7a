package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestHashFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "ct.txt")
	content := []byte("Wkh txlfn eurzq ira")

	if err := os.WriteFile(testFile, content, 0600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	hash1, size1, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if size1 != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), size1)
	}

	hash2, _, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("second HashFile failed: %v", err)
	}
	if hash1 != hash2 {
		t.Error("same file should produce same hash")
	}

	if err := os.WriteFile(testFile, []byte("different content"), 0600); err != nil {
		t.Fatalf("failed to modify test file: %v", err)
	}
	hash3, _, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("third HashFile failed: %v", err)
	}
	if hash1 == hash3 {
		t.Error("different content should produce different hash")
	}
}

func TestHashFileNotFound(t *testing.T) {
	_, _, err := HashFile("/nonexistent/file.txt")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestStartMissingPath(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "missing.txt")}, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err == nil {
		t.Error("expected error for missing path")
	}
	w.fsWatcher.Close()
}

func waitEvent(t *testing.T, w *Watcher, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev, true
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestFileChangeReported(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "ct.txt")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(target, []byte("initial"), 0600); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{target}, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	// The initial content is the baseline.
	if _, ok := waitEvent(t, w, 300*time.Millisecond); ok {
		t.Fatal("baseline content reported")
	}

	// Files beside the target are ignored.
	if err := os.WriteFile(other, []byte("unrelated"), 0600); err != nil {
		t.Fatal(err)
	}
	if ev, ok := waitEvent(t, w, 300*time.Millisecond); ok {
		t.Fatalf("unexpected event for %s", ev.Path)
	}

	if err := os.WriteFile(target, []byte("Uifsf jt b tfdsfu"), 0600); err != nil {
		t.Fatal(err)
	}
	ev, ok := waitEvent(t, w, 3*time.Second)
	if !ok {
		t.Fatal("timeout waiting for event")
	}
	abs, _ := filepath.Abs(target)
	if ev.Path != abs {
		t.Errorf("expected path %s, got %s", abs, ev.Path)
	}
	if ev.Size != int64(len("Uifsf jt b tfdsfu")) {
		t.Errorf("unexpected size %d", ev.Size)
	}
}

func TestUnchangedContentSuppressed(t *testing.T) {
	defer goleak.VerifyNone(t)

	target := filepath.Join(t.TempDir(), "ct.txt")
	if err := os.WriteFile(target, []byte("same"), 0600); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{target}, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(target, []byte("same"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok := waitEvent(t, w, 600*time.Millisecond); ok {
		t.Error("rewrite with identical content reported")
	}
}

func TestDebounce(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, err := New([]string{dir}, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	testFile := filepath.Join(dir, "debounce.txt")
	for i := range 5 {
		if err := os.WriteFile(testFile, []byte("v"+string(rune('0'+i))), 0600); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
	}

	eventCount := 0
	timeout := time.After(3 * time.Second)
	for {
		select {
		case <-w.Events():
			eventCount++
			if eventCount > 1 {
				t.Error("expected only one event due to debouncing")
				return
			}
		case <-timeout:
			if eventCount != 1 {
				t.Errorf("expected 1 event, got %d", eventCount)
			}
			return
		}
	}
}

func TestRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	target := filepath.Join(t.TempDir(), "ct.txt")
	if err := os.WriteFile(target, []byte("one"), 0600); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{target}, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stop := errors.New("stop")
	go func() {
		time.Sleep(200 * time.Millisecond)
		os.WriteFile(target, []byte("two"), 0600)
	}()

	err = w.Run(ctx, func(ev Event) error {
		if ev.Size != 3 {
			t.Errorf("unexpected size %d", ev.Size)
		}
		return stop
	}, nil)
	if !errors.Is(err, stop) {
		t.Errorf("expected callback error, got %v", err)
	}
}
