package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	contextutils "ireporter/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalFileStore {
	t.Helper()
	store, err := NewLocalFileStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return store
}

func TestLocalFileStore_WriteFile(t *testing.T) {
	store := newTestStore(t)

	name, err := store.WriteFile([]byte("hello"), "photo.JPG")
	require.NoError(t, err)

	// 32 hex chars plus lowercased extension
	assert.Len(t, name, 36)
	assert.Equal(t, ".jpg", filepath.Ext(name))
	assert.NotContains(t, name, "photo")

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestLocalFileStore_WriteFile_UniqueNames(t *testing.T) {
	store := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		name, err := store.WriteFile([]byte("x"), "a.png")
		require.NoError(t, err)
		assert.False(t, seen[name], "stored name %s repeated", name)
		seen[name] = true
	}
}

func TestLocalFileStore_WriteFile_StripsClientPath(t *testing.T) {
	store := newTestStore(t)

	name, err := store.WriteFile([]byte("x"), "../../etc/passwd.png")
	require.NoError(t, err)
	assert.True(t, store.FileExists(name))
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")
}

func TestLocalFileStore_DeleteFile(t *testing.T) {
	store := newTestStore(t)

	name, err := store.WriteFile([]byte("x"), "a.png")
	require.NoError(t, err)
	require.True(t, store.FileExists(name))

	require.NoError(t, store.DeleteFile(name))
	assert.False(t, store.FileExists(name))

	err = store.DeleteFile(name)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contextutils.ErrRecordNotFound))
}

func TestLocalFileStore_FileExists(t *testing.T) {
	store := newTestStore(t)
	assert.False(t, store.FileExists("missing.png"))
}

func TestNewLocalFileStore_EmptyDir(t *testing.T) {
	_, err := NewLocalFileStore("")
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeValidationFailed, contextutils.GetErrorCode(err))
}

func TestSanitizeExtension(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":        ".jpg",
		"photo.JPG":        ".jpg",
		"archive.tar.gz":   ".gz",
		"noext":            "",
		"trailingdot.":     "",
		"weird.p~g":        "",
		"../../etc/passwd": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeExtension(in), "input %q", in)
	}
}
