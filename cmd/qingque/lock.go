package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// errLocked is returned by [withLock] when another process holds the lock.
var errLocked = errors.New("another qingque process holds the lock")

// withLock runs fn while holding the exclusive lock at path. The lock file
// records the holder's PID so a conflicting run can name it.
func withLock(path string, fn func() error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close()

	if lockErr := lockFile(f); lockErr != nil {
		if pid := readLockPID(path); pid > 0 {
			return fmt.Errorf("%w (pid %d)", errLocked, pid)
		}
		return errLocked
	}
	defer func() { _ = unlockFile(f) }()

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}
	return fn()
}

// readLockPID returns the PID stored in the lock file, or 0.
func readLockPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
