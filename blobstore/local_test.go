package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "dumps"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "dumps", "a.jsonl"), []byte("hello"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "other.jsonl"), []byte("x"), 0o600))

	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	t.Run("Open", func(t *testing.T) {
		rc, err := store.Open(ctx, "dumps/a.jsonl")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.jsonl")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"dumps/a.jsonl", "other.jsonl"}, names)

		names, err = store.List(ctx, "dumps/")
		require.NoError(t, err)
		assert.Equal(t, []string{"dumps/a.jsonl"}, names)
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Open(cctx, "dumps/a.jsonl")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("payload")
	store.Put("b", data)
	store.Put("a", []byte("first"))
	data[0] = 'X'

	rc, err := store.Open(ctx, "b")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	store.Delete("b")
	_, err = store.Open(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}
