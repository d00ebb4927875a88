// Package lock guards a working directory against concurrent pipeline runs.
//
// The lock is an advisory file lock (flock) on a file in the working
// directory. The kernel drops it when the holding process exits, so a run
// killed mid-pipeline never blocks the next one. The file content identifies
// the current holder so a refused run can tell the user who owns it.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/logfields"
)

// FileName is the lock file created in the working directory.
const FileName = ".distbuilder.lock"

// Holder describes the run owning a lock.
type Holder struct {
	RunID    string    `json:"run_id"`
	PID      int       `json:"pid"`
	Acquired time.Time `json:"acquired"`
}

func (h Holder) String() string {
	return fmt.Sprintf("run %s, pid %d, since %s", h.RunID, h.PID, h.Acquired.Format(time.RFC3339))
}

// Lock is a held lock file.
type Lock struct {
	fl     *flock.Flock
	holder Holder
}

// Acquire locks the file at path for runID without blocking. If another
// process holds it the error matches fe.ErrLocked and names the holder. A file
// left behind by a dead process is taken over.
func Acquire(path, runID string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fe.FileSystemError("failed to lock working directory").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if !ok {
		return nil, fe.Locked(path, describeHolder(path))
	}

	if prev, err := ReadHolder(path); err == nil && prev.RunID != "" {
		slog.Info("Taking over lock left by an earlier run", logfields.Path(path), "holder", prev.String())
	}

	holder := Holder{RunID: runID, PID: os.Getpid(), Acquired: time.Now().UTC()}
	data, err := json.Marshal(holder)
	if err == nil {
		err = os.WriteFile(path, append(data, '\n'), 0o644)
	}
	if err != nil {
		_ = fl.Unlock()
		return nil, fe.FileSystemError("failed to write lock file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	slog.Debug("Acquired lock", logfields.Path(path), logfields.RunID(runID))
	return &Lock{fl: fl, holder: holder}, nil
}

// Holder returns the owner recorded when the lock was acquired.
func (l *Lock) Holder() Holder {
	return l.holder
}

// Release drops the lock. The file stays in place; removing it would let a
// waiter lock an unlinked inode while a newcomer creates a fresh file.
func (l *Lock) Release() error {
	if !l.fl.Locked() {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	slog.Debug("Released lock", logfields.Path(l.fl.Path()), logfields.RunID(l.holder.RunID))
	return nil
}

// ReadHolder decodes the holder recorded in the lock file at path.
func ReadHolder(path string) (Holder, error) {
	var h Holder
	data, err := os.ReadFile(path)
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("decode lock %s: %w", path, err)
	}
	return h, nil
}

// ForceRemove deletes the lock file so the next Acquire starts from a fresh
// file. It is an escape hatch for filesystems without working flock; a
// process still holding the old file keeps its lock on the unlinked inode.
// A missing file is not an error.
func ForceRemove(path string) error {
	if h, err := ReadHolder(path); err == nil {
		slog.Warn("Removing lock file", logfields.Path(path), "holder", h.String())
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock: %w", err)
	}
	return nil
}

func describeHolder(path string) string {
	h, err := ReadHolder(path)
	if err != nil {
		return "unknown holder"
	}
	return h.String()
}
