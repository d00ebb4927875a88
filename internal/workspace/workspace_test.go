package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStaging_BeginRemovesLeftovers(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".dist")
	write(t, filepath.Join(dir, "stale.txt"), "old run")

	s := NewStaging(dir)
	require.NoError(t, s.Begin())
	assert.True(t, s.Active())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStaging_AbortWithoutBegin(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".dist")

	s := NewStaging(dir)
	require.NoError(t, s.Abort(), "abort on a missing directory is a no-op")

	write(t, filepath.Join(dir, "stale.txt"), "old run")
	require.NoError(t, s.Abort())
	assert.NoDirExists(t, dir)
}

func TestStaging_PromoteReplacesTarget(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "dist")
	write(t, filepath.Join(target, "old-only.txt"), "from previous run")
	write(t, filepath.Join(target, "VERSION"), "1")

	s := NewStaging(filepath.Join(root, ".dist"))
	require.NoError(t, s.Begin())
	write(t, filepath.Join(s.Path(), "VERSION"), "2")

	require.NoError(t, s.Promote(target))
	assert.False(t, s.Active())

	assert.NoFileExists(t, filepath.Join(target, "old-only.txt"))
	got, err := os.ReadFile(filepath.Join(target, "VERSION"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))

	assert.NoDirExists(t, s.Path())
	assert.NoDirExists(t, target+".prev")
}

func TestStaging_PromoteWithoutExistingTarget(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "dist")

	s := NewStaging(filepath.Join(root, ".dist"))
	require.NoError(t, s.Begin())
	write(t, filepath.Join(s.Path(), "tool"), "bin")

	require.NoError(t, s.Promote(target))
	assert.FileExists(t, filepath.Join(target, "tool"))
}

func TestStaging_PromoteRemovesStaleBackup(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "dist")
	write(t, filepath.Join(target+".prev", "ancient.txt"), "x")

	s := NewStaging(filepath.Join(root, ".dist"))
	require.NoError(t, s.Begin())
	require.NoError(t, s.Promote(target))

	assert.NoDirExists(t, target+".prev")
}

func TestStaging_ConsumedOnce(t *testing.T) {
	root := t.TempDir()
	s := NewStaging(filepath.Join(root, ".dist"))

	require.Error(t, s.Promote(filepath.Join(root, "dist")), "promote before begin")
	require.Error(t, s.Discard(), "discard before begin")

	require.NoError(t, s.Begin())
	require.NoError(t, s.Discard())
	assert.NoDirExists(t, s.Path())
	require.Error(t, s.Discard(), "second discard")
	require.Error(t, s.Promote(filepath.Join(root, "dist")), "promote after discard")
}
