package storage

import (
	"os"
	"path/filepath"
	"strings"

	contextutils "ireporter/internal/utils"
)

// storedNameTokenBytes is the entropy of a stored name (32 hex chars).
const storedNameTokenBytes = 16

// LocalFileStore keeps attachment bytes in a single directory on local disk.
type LocalFileStore struct {
	dir string
}

// NewLocalFileStore creates the uploads directory if needed and returns a store over it.
func NewLocalFileStore(dir string) (result0 *LocalFileStore, err error) {
	if dir == "" {
		return nil, contextutils.NewValidationError("uploads_dir", "must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, contextutils.WrapError(err, "failed to create uploads directory")
	}
	return &LocalFileStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *LocalFileStore) Dir() string {
	return s.dir
}

// WriteFile persists data under a random stored name that keeps only the
// extension of suggestedName. The client-supplied base name never reaches disk.
func (s *LocalFileStore) WriteFile(data []byte, suggestedName string) (storedName string, err error) {
	token, err := contextutils.RandomToken(storedNameTokenBytes)
	if err != nil {
		return "", contextutils.WrapError(err, "failed to generate stored name")
	}

	storedName = token + sanitizeExtension(suggestedName)

	path := filepath.Join(s.dir, storedName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrStorageFailure, "failed to write file %s: %w", storedName, err)
	}
	return storedName, nil
}

// DeleteFile removes the named file from the store.
func (s *LocalFileStore) DeleteFile(storedName string) error {
	path := filepath.Join(s.dir, filepath.Base(storedName))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "file %s not found: %w", storedName, err)
		}
		return contextutils.WrapErrorf(contextutils.ErrStorageFailure, "failed to delete file %s: %w", storedName, err)
	}
	return nil
}

// FileExists reports whether the named file is present in the store.
func (s *LocalFileStore) FileExists(storedName string) bool {
	path := filepath.Join(s.dir, filepath.Base(storedName))
	_, err := os.Stat(path)
	return err == nil
}

// sanitizeExtension extracts a lowercase extension from a client-supplied
// filename, dropping anything that could not be a plain extension.
func sanitizeExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
