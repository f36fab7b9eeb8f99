package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
)

// LockFileName is the advisory lock taken in the state directory for a run
const LockFileName = "wbwatch.lock"

// DefaultLockStaleAfter is how old a lock file must be before a new run
// assumes its owner died and takes it over
const DefaultLockStaleAfter = 6 * time.Hour

// Lock is an advisory lock file. It only excludes other wbwatch runs.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock creates path exclusively. If it already exists and is younger
// than staleAfter the result wraps errors.ErrLocked; an older lock is taken
// over.
func AcquireLock(path string, staleAfter time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to create lock directory for %s", path)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			fmt.Fprintf(f, "pid=%d started=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
			return &Lock{path: path, file: f}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrapf(err, "failed to create lock %s", path)
		}

		info, statErr := os.Stat(path)
		if statErr == nil && staleAfter > 0 && time.Since(info.ModTime()) > staleAfter {
			os.Remove(path)
			continue
		}

		holder, _ := os.ReadFile(path)
		lockErr := errors.WithDetailf(errors.ErrLocked, "lock %s: %s", path, strings.TrimSpace(string(holder)))
		return nil, errors.WithHintf(lockErr, "remove %s if no other run is active", path)
	}
	return nil, errors.Wrapf(errors.ErrLocked, "lock %s was re-created while taking it over", path)
}

// Release removes the lock file
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.file.Close()
	l.file = nil
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to release lock %s", l.path)
	}
	return nil
}
