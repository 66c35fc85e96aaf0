package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	v, found, err := s.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v)
}

func TestSQLiteStore_SetAndOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, DefaultKey, `[]`))
	v, found, err := s.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Set(ctx, DefaultKey, `[{"id":"1"}]`))
	v, _, err = s.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, v)

	_, found, err = s.Get(ctx, "other")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore_ReopenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
	assert.NoError(t, s.Ping(ctx))
}
