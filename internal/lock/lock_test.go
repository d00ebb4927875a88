package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	l, err := Acquire(path, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", l.Holder().RunID)
	assert.Equal(t, os.Getpid(), l.Holder().PID)

	h, err := ReadHolder(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", h.RunID)

	require.NoError(t, l.Release())
	require.NoError(t, l.Release(), "double release is harmless")

	again, err := Acquire(path, "run-2")
	require.NoError(t, err, "released lock can be taken again")
	require.NoError(t, again.Release())
}

func TestAcquire_Contended(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	first, err := Acquire(path, "run-1")
	require.NoError(t, err)
	defer first.Release()

	_, err = Acquire(path, "run-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, fe.ErrLocked)
	assert.Contains(t, err.Error(), "run-1")

	h, err := ReadHolder(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", h.RunID, "failed acquire must not clobber the holder")
}

func TestAcquire_TakesOverFileOfDeadRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"run_id":"dead","pid":999999}`), 0o644))

	l, err := Acquire(path, "run-2")
	require.NoError(t, err)
	defer l.Release()

	h, err := ReadHolder(path)
	require.NoError(t, err)
	assert.Equal(t, "run-2", h.RunID)
	assert.Equal(t, os.Getpid(), h.PID)
}

func TestAcquire_GarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	l, err := Acquire(path, "run-1")
	require.NoError(t, err)
	require.NoError(t, l.Release())
}

func TestForceRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, ForceRemove(path), "missing lock")

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	require.NoError(t, ForceRemove(path))
	assert.NoFileExists(t, path)
}

func TestForceRemove_HeldLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	held, err := Acquire(path, "run-1")
	require.NoError(t, err)
	require.NoError(t, ForceRemove(path))

	other, err := Acquire(path, "run-2")
	require.NoError(t, err, "a fresh file is not covered by the old lock")

	require.NoError(t, held.Release())
	h, err := ReadHolder(path)
	require.NoError(t, err)
	assert.Equal(t, "run-2", h.RunID, "releasing the old lock leaves the new holder alone")
	require.NoError(t, other.Release())
}
