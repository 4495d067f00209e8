package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryEntry struct {
	content []byte
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Files may be overwritten between loads to simulate edits.
//
// All methods are safe for concurrent use.
//
// Example:
//
//	fsys := filesystem.NewMemoryFileSystem("/meta")
//	fsys.AddFile("zcl.json", `{"xmlRoot": "zcl", "xmlFile": ["general.xml"]}`)
//	fsys.AddFile("zcl/general.xml", generalXML)
//	svc := services.NewLoadService(store, fsys, logger)
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]*memoryEntry
	root  string
}

// NewMemoryFileSystem creates a new in-memory filesystem rooted at root.
// The root path is normalized to use forward slashes.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryEntry),
		root:  root,
	}
	mfs.ensureDir(root)
	return mfs
}

// Root returns the normalized root directory.
func (m *MemoryFileSystem) Root() string {
	return m.root
}

// Path resolves relPath against the root.
func (m *MemoryFileSystem) Path(relPath string) string {
	return m.resolve(relPath)
}

// AddFile adds or replaces a file. relPath is resolved against the root
// unless absolute. Parent directories are created implicitly.
func (m *MemoryFileSystem) AddFile(relPath, content string) {
	p := m.resolve(relPath)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureDir(path.Dir(p))
	m.files[p] = &memoryEntry{
		content: []byte(content),
		info: &memoryFileInfo{
			name:    path.Base(p),
			size:    int64(len(content)),
			mode:    0644,
			modTime: time.Now(),
		},
	}
}

// RemoveFile deletes a file. Missing files are ignored.
func (m *MemoryFileSystem) RemoveFile(relPath string) {
	p := m.resolve(relPath)

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.files[p]; ok && !e.info.isDir {
		delete(m.files, p)
	}
}

// ReadFile implements FileSystemProvider.ReadFile. The returned slice is a
// copy; mutating it does not change the stored file.
func (m *MemoryFileSystem) ReadFile(p string) ([]byte, error) {
	p = m.resolve(p)

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	if e.info.isDir {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fmt.Errorf("is a directory")}
	}
	out := make([]byte, len(e.content))
	copy(out, e.content)
	return out, nil
}

// ReadDir implements FileSystemProvider.ReadDir.
func (m *MemoryFileSystem) ReadDir(p string) ([]FileInfo, error) {
	p = m.resolve(p)

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.files[p]
	if !ok || !e.info.isDir {
		return nil, fmt.Errorf("failed to read directory: %w", &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist})
	}

	var result []FileInfo
	for fp, entry := range m.files {
		if fp != p && path.Dir(fp) == p {
			result = append(result, entry.info)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

// Stat implements FileSystemProvider.Stat.
func (m *MemoryFileSystem) Stat(p string) (FileInfo, error) {
	p = m.resolve(p)

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return e.info, nil
}

// ensureDir creates dir and its parents. Callers hold the write lock or
// are still constructing the filesystem.
func (m *MemoryFileSystem) ensureDir(dir string) {
	for {
		if _, ok := m.files[dir]; ok {
			return
		}
		m.files[dir] = &memoryEntry{
			info: &memoryFileInfo{
				name:    path.Base(dir),
				mode:    0755 | fs.ModeDir,
				modTime: time.Now(),
				isDir:   true,
			},
		}
		parent := path.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (m *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if !strings.HasPrefix(p, "/") && !strings.HasPrefix(p, m.root+"/") && p != m.root {
		p = path.Join(m.root, p)
	}
	return path.Clean(p)
}
