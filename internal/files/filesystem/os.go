package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem reads metadata from the local disk. Paths are used as given;
// relative paths resolve against the working directory.
type OSFileSystem struct{}

// NewOSFileSystem creates a local disk provider.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// ReadFile implements FileSystemProvider.ReadFile.
func (*OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Clean(path))
}

// ReadDir implements FileSystemProvider.ReadDir. Entries are sorted by
// name; entries removed while listing are skipped.
func (*OSFileSystem) ReadDir(path string) ([]FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", filepath.Join(path, e.Name()), err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Stat implements FileSystemProvider.Stat.
func (*OSFileSystem) Stat(path string) (FileInfo, error) {
	return os.Stat(filepath.Clean(path))
}
