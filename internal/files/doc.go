// Package files groups file access helpers used by the loader.
//
// Sub-packages:
//   - filesystem: read-only filesystem abstraction (OS and in-memory)
package files
