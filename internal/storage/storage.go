// Package storage provides durable blob storage for report attachments.
package storage

// FileStore is the durable-storage collaborator for attachment bytes.
// Implementations must generate collision-resistant stored names without
// coordination so concurrent uploads need no locking.
type FileStore interface {
	// WriteFile persists data under a server-generated name derived from
	// suggestedName's extension only, never its base name.
	WriteFile(data []byte, suggestedName string) (storedName string, err error)
	// DeleteFile removes the named file. Deleting a missing file is an error.
	DeleteFile(storedName string) error
	// FileExists reports whether the named file is present.
	FileExists(storedName string) bool
}
