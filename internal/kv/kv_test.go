package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "file"))
	require.NoError(t, err)
	lite, err := OpenSQLite(filepath.Join(dir, "sqlite", "arsenal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": lite,
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "profile")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "profile", []byte(`{"level":3}`)))
			got, err := s.Get(ctx, "profile")
			require.NoError(t, err)
			assert.JSONEq(t, `{"level":3}`, string(got))

			require.NoError(t, s.Put(ctx, "profile", []byte(`{"level":4}`)))
			got, err = s.Get(ctx, "profile")
			require.NoError(t, err)
			assert.JSONEq(t, `{"level":4}`, string(got))

			require.NoError(t, s.Put(ctx, "night_solves", []byte(`7`)))
			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"night_solves", "profile"}, keys)

			require.NoError(t, s.Delete(ctx, "profile"))
			_, err = s.Get(ctx, "profile")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting a missing key is not an error.
			assert.NoError(t, s.Delete(ctx, "profile"))
		})
	}
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f, err := OpenFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.Put(ctx, "last_solved_date", []byte(`"2026-03-01"`)))

	reopened, err := OpenFile(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "last_solved_date")
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-01"`, string(got))
}

func TestFile_NoTempFilesLeftBehind(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f, err := OpenFile(dir)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, f.Put(ctx, "k", []byte(`1`)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, stateFileName, entries[0].Name())
}

func TestFile_RejectsInvalidJSON(t *testing.T) {
	f, err := OpenFile(t.TempDir())
	require.NoError(t, err)
	err = f.Put(context.Background(), "k", []byte(`{not json`))
	assert.Error(t, err)
}

func TestFile_CorruptStateMovedAside(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFileName), []byte("garbage{"), 0o600))

	f, err := OpenFile(dir)
	require.NoError(t, err)

	keys, err := f.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)

	matches, err := filepath.Glob(filepath.Join(dir, stateFileName+".corrupt-*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFile_FailedWriteRollsBack(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")

	f, err := OpenFile(blocker)
	require.NoError(t, err)
	// A regular file where the state dir should be makes MkdirAll fail.
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	require.Error(t, f.Put(ctx, "k", []byte(`1`)))

	_, err = f.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(BackendFile, dir)
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = Open(BackendSQLite, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	s, err = Open(BackendMemory, dir)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open("etcd", dir)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestDefaultDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	assert.Equal(t, "/tmp/xdg-state/code-arsenal", DefaultDir())
}
