//go:build !unix && !windows

package fsutil

import "os"

// Advisory locks are unavailable; writes are still atomic.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
