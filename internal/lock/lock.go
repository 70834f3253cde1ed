// Package lock guards a workspace against concurrent daemons with an
// advisory flock. The lock file records who holds it.
package lock

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Owner describes the daemon holding a workspace lock.
type Owner struct {
	PID    int
	Socket string
	Since  time.Time
}

// HeldError is returned by Acquire when another process holds the lock.
type HeldError struct {
	Path  string
	Owner Owner
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("workspace lock %s held by PID %d", e.Path, e.Owner.PID)
}

// Lock is an acquired lock file. It is released by Release or process exit.
type Lock struct {
	f    *os.File
	path string
}

// Acquire takes the lock at path without blocking and records socket as the
// daemon's address. The parent directory is created if needed.
func Acquire(path, socket string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		owner, _ := Holder(path)
		return nil, &HeldError{Path: path, Owner: owner}
	}

	owner := Owner{PID: os.Getpid(), Socket: socket, Since: time.Now().UTC().Truncate(time.Second)}
	if err := record(f, owner); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write lock owner: %w", err)
	}
	return &Lock{f: f, path: path}, nil
}

// Holder reads the owner recorded at path. It reports false when there is no
// lock file or it names no process.
func Holder(path string) (Owner, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Owner{}, false
	}
	defer func() { _ = f.Close() }()
	o := parseOwner(bufio.NewScanner(f))
	return o, o.PID > 0
}

// Release removes the lock file and drops the lock. It is a no-op on a nil or
// already released Lock.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	// Unlink while still holding the flock so no reader sees a stale owner.
	_ = os.Remove(l.path)
	err := l.f.Close()
	l.f = nil
	return err
}

func record(f *os.File, o Owner) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	_, err := fmt.Fprintf(f, "pid=%d\nsocket=%s\nsince=%s\n", o.PID, o.Socket, o.Since.Format(time.RFC3339))
	return err
}

func parseOwner(sc *bufio.Scanner) Owner {
	var o Owner
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "pid":
			o.PID, _ = strconv.Atoi(val)
		case "socket":
			o.Socket = val
		case "since":
			o.Since, _ = time.Parse(time.RFC3339, val)
		}
	}
	return o
}
