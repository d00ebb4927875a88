package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RecordAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, Run{
		RunID: "run-1", Started: base, Duration: 1500 * time.Millisecond,
		Mode: "move", Outcome: "success", Output: "/work/dist", Revision: "abc123",
	}))
	require.NoError(t, store.Record(ctx, Run{
		RunID: "run-2", Started: base.Add(time.Minute), Duration: 300 * time.Millisecond,
		Mode: "archive", Outcome: "failed", Error: "failed to build hikari_cli",
	}))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, "failed", runs[0].Outcome)
	assert.Equal(t, "failed to build hikari_cli", runs[0].Error)
	assert.Empty(t, runs[0].Output)

	assert.Equal(t, "run-1", runs[1].RunID)
	assert.Equal(t, 1500*time.Millisecond, runs[1].Duration)
	assert.True(t, base.Equal(runs[1].Started))
	assert.Equal(t, "abc123", runs[1].Revision)

	limited, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-2", limited[0].RunID)
}

func TestSQLiteStore_DuplicateRunID(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	run := Run{RunID: "dup", Started: time.Now(), Mode: "move", Outcome: "success"}
	require.NoError(t, store.Record(context.Background(), run))
	require.Error(t, store.Record(context.Background(), run))
}

func TestOpen_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), Run{RunID: "r", Started: time.Now(), Mode: "move", Outcome: "success"}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r", runs[0].RunID)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "history.db", filepath.Base(DefaultPath()))
	assert.Equal(t, "distbuilder", filepath.Base(filepath.Dir(DefaultPath())))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	require.NoError(t, r.Record(context.Background(), Run{}))
}
