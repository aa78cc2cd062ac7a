//go:build windows

package fsutil

import (
	"os"
	"syscall"
)

const lockfileExclusiveLock = 0x2

// lockFile acquires an exclusive lock on the first byte of a file.
func lockFile(f *os.File) error {
	var overlapped syscall.Overlapped
	return syscall.LockFileEx(syscall.Handle(f.Fd()), lockfileExclusiveLock, 0, 1, 0, &overlapped)
}

// unlockFile releases the lock on a file.
func unlockFile(f *os.File) error {
	var overlapped syscall.Overlapped
	return syscall.UnlockFileEx(syscall.Handle(f.Fd()), 0, 1, 0, &overlapped)
}
