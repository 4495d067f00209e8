// Package filesystem provides the read-only filesystem abstraction the loader
// reads metadata files through.
//
// Implementations:
//   - OSFileSystem: production implementation using the OS filesystem
//   - MemoryFileSystem: in-memory implementation for tests
package filesystem
