// Package watcher reports ciphertext files whose content changed, once the
// file has been stable for a debounce interval.
package watcher

import (
	"context"
	"crypto/sha256"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event reports a file whose content differs from the last reported (or
// initial) content.
type Event struct {
	Path      string
	Hash      [32]byte
	Size      int64
	Timestamp time.Time
}

// Watcher monitors files and directories for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	paths     []string
	debounce  time.Duration

	// files holds explicitly watched files; dirs holds watched directories.
	files map[string]bool
	dirs  map[string]bool

	// pending maps a path to the time of its last write event.
	pending map[string]time.Time
	// seen maps a path to the hash of its last reported content.
	seen    map[string][32]byte
	stateMu sync.Mutex

	events chan Event
	errors chan error

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for paths. A file must go debounce without writes
// before it is reported.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		paths:     paths,
		debounce:  debounce,
		files:     make(map[string]bool),
		dirs:      make(map[string]bool),
		pending:   make(map[string]time.Time),
		seen:      make(map[string][32]byte),
		events:    make(chan Event, 16),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}, nil
}

// Events returns the channel of change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching all configured paths. The current content of every
// file is the baseline and is not reported.
func (w *Watcher) Start() error {
	for _, path := range w.paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if err := w.fsWatcher.Add(absPath); err != nil {
				return err
			}
			w.dirs[absPath] = true

			entries, err := os.ReadDir(absPath)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if !entry.IsDir() {
					w.baseline(filepath.Join(absPath, entry.Name()))
				}
			}
			continue
		}

		// Editors replace files by rename, so watch the directory.
		if err := w.fsWatcher.Add(filepath.Dir(absPath)); err != nil {
			return err
		}
		w.files[absPath] = true
		w.baseline(absPath)
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()

	return nil
}

// Stop shuts the watcher down and closes both channels.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return w.fsWatcher.Close()
}

// Run starts the watcher and calls fn for every event until ctx is done or
// fn fails. Watch errors are passed to onError, which may be nil.
func (w *Watcher) Run(ctx context.Context, fn func(Event) error, onError func(error)) error {
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-w.events:
			if err := fn(ev); err != nil {
				return err
			}
		case err := <-w.errors:
			if onError != nil {
				onError(err)
			}
		}
	}
}

func (w *Watcher) baseline(path string) {
	hash, _, err := HashFile(path)
	if err != nil {
		return
	}
	w.stateMu.Lock()
	w.seen[path] = hash
	w.stateMu.Unlock()
}

// watched reports whether events on path concern this watcher.
func (w *Watcher) watched(path string) bool {
	return w.files[path] || w.dirs[filepath.Dir(path)]
}

// eventLoop handles fsnotify events.
func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			if !w.watched(path) {
				continue
			}

			w.stateMu.Lock()
			w.pending[path] = time.Now()
			w.stateMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// debounceLoop checks for stable files and emits change events.
func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	tick := min(max(w.debounce/4, 10*time.Millisecond), time.Second)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case now := <-ticker.C:
			w.checkStableFiles(now)
		}
	}
}

// checkStableFiles reports files that have not been written for the
// debounce interval. The lock is released while hashing.
func (w *Watcher) checkStableFiles(now time.Time) {
	threshold := now.Add(-w.debounce)

	type stableFile struct {
		path    string
		lastMod time.Time
	}
	var stable []stableFile
	w.stateMu.Lock()
	for path, lastMod := range w.pending {
		if !lastMod.After(threshold) {
			stable = append(stable, stableFile{path, lastMod})
		}
	}
	w.stateMu.Unlock()

	for _, sf := range stable {
		hash, size, err := HashFile(sf.path)

		w.stateMu.Lock()
		if w.pending[sf.path] != sf.lastMod {
			// Written again while hashing; wait for it to settle.
			w.stateMu.Unlock()
			continue
		}
		if err != nil {
			delete(w.pending, sf.path)
			w.stateMu.Unlock()
			if !os.IsNotExist(err) {
				select {
				case w.errors <- err:
				default:
				}
			}
			continue
		}
		if prev, ok := w.seen[sf.path]; ok && prev == hash {
			delete(w.pending, sf.path)
			w.stateMu.Unlock()
			continue
		}

		select {
		case w.events <- Event{Path: sf.path, Hash: hash, Size: size, Timestamp: now}:
			delete(w.pending, sf.path)
			w.seen[sf.path] = hash
		default:
			// Channel full; retry on the next tick.
		}
		w.stateMu.Unlock()
	}
}

// HashFile computes the SHA-256 hash and size of a file.
func HashFile(path string) ([32]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return [32]byte{}, 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return [32]byte{}, 0, err
	}

	var hash [32]byte
	copy(hash[:], h.Sum(nil))
	return hash, size, nil
}

// WatchedPaths returns the list of paths being watched.
func (w *Watcher) WatchedPaths() []string {
	return w.paths
}

// Pending returns the number of files waiting out the debounce interval.
func (w *Watcher) Pending() int {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return len(w.pending)
}
