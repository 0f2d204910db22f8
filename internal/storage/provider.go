// Package storage defines the file-system abstraction of a blog directory.
package storage

import (
	"io/fs"
	"time"
)

// FileInfo describes one file found by List.
type FileInfo struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for file operations below the blog root.
// All paths are relative to that root.
type Provider interface {
	// Stat returns the file info of path; a missing file yields an error
	// satisfying errors.Is(err, fs.ErrNotExist).
	Stat(path string) (fs.FileInfo, error)
	// List returns every file with the given extension under dir.
	List(dir, ext string) ([]FileInfo, error)
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of path.
	Write(path string, content []byte) error
	// Append adds content at the end of path, creating it when needed.
	Append(path string, content []byte) error
	Delete(path string) error
}
