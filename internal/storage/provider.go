// Package storage defines the document source abstraction and its
// file-system implementation.
package storage

import "github.com/starford/recast/internal/models"

// Source is one document the pipeline reads and overwrites.
type Source interface {
	// Name is the file name reported in progress output and the log.
	Name() string
	// Read returns the current raw content.
	Read() ([]byte, error)
	// Write replaces the content.
	Write(content []byte) error
}

// Provider is the interface for source directory operations.
type Provider interface {
	// List returns metadata for top-level files whose name matches pattern.
	List(pattern string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at name (relative to root).
	Read(name string) ([]byte, error)
	// Write atomically writes content to name (relative to root).
	Write(name string, content []byte) error
	// Sources returns a Source for every file List would report.
	Sources(pattern string) ([]Source, error)
}
