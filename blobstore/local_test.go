package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewLocalStore(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	// 1. Put a blob
	blobName := "graph-001.rett"
	data := []byte("hello world, this is a test blob for rett")

	err = store.Put(ctx, blobName, data)
	require.NoError(t, err)

	// Verify file exists on disk
	_, err = os.Stat(filepath.Join(tmpDir, blobName))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(buf, 6) // "world"
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. List
	err = store.Put(ctx, "graph-002.rett", []byte("x"))
	require.NoError(t, err)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"graph-001.rett", "graph-002.rett"}, names)

	// 4. Delete
	err = store.Delete(ctx, blobName)
	require.NoError(t, err)

	namesAfter, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"graph-002.rett"}, namesAfter)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing blob is not an error.
	require.NoError(t, store.Delete(ctx, blobName))
}

func TestLocalStore_NestedNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "graphs/a.rett", []byte("a")))
	require.NoError(t, store.Put(ctx, "graphs/b.rett", []byte("b")))
	require.NoError(t, store.Put(ctx, "other/c.rett", []byte("c")))

	names, err := store.List(ctx, "graphs/")
	require.NoError(t, err)
	require.Equal(t, []string{"graphs/a.rett", "graphs/b.rett"}, names)

	blob, err := store.Open(ctx, "graphs/a.rett")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(1), blob.Size())
}

func TestLocalStore_InvalidName(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "a/../../b"} {
		require.Error(t, store.Put(ctx, name, []byte("x")), "name %q", name)
		_, err := store.Open(ctx, name)
		require.Error(t, err, "name %q", name)
	}
}

func TestLocalStore_Overwrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "g.rett", []byte("first version")))
	require.NoError(t, store.Put(ctx, "g.rett", []byte("second")))

	blob, err := store.Open(ctx, "g.rett")
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len("second")), blob.Size())
	buf := make([]byte, blob.Size())
	_, err = blob.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "second", string(buf))

	// No temp leftovers show up in listings.
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"g.rett"}, names)
}
