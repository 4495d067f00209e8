package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This keeps the provider compatible with the fs.FS ecosystem while giving
// the loader a stable local type.
type FileInfo = fs.FileInfo

// FileSystemProvider reads metadata files and probes for their existence.
//
// The loader reads every file through a provider: manifests, the XML files
// they list, and the manufacturer/profile map files. Paths are absolute or
// relative to the provider's notion of the working directory.
//
// Implementations must be safe for concurrent use; sub-files of one load
// are read and parsed in parallel.
type FileSystemProvider interface {
	// ReadFile reads a specific file at the given path.
	// A missing file yields an error matching fs.ErrNotExist.
	ReadFile(path string) ([]byte, error)

	// ReadDir reads the directory entries at the given path, sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path.
	// A missing path yields an error matching fs.ErrNotExist.
	Stat(path string) (FileInfo, error)
}

// Exists reports whether path names a regular file. Errors other than
// absence are treated as absence; callers that need to distinguish them
// use Stat directly.
func Exists(p FileSystemProvider, path string) bool {
	info, err := p.Stat(path)
	return err == nil && !info.IsDir()
}
