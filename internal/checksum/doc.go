// Package checksum provides content hashing for metadata files.
//
// Two hashes are available:
//
//   - Raw checksum: hash of the exact file bytes (detects every change)
//   - Normalized checksum: hash after removing XML comments and `#`/`!`
//     property comment lines and collapsing whitespace
//
// The Content Registry stores one of them per package and compares it on the
// next load to decide whether the file must be parsed again.
//
// # Example Usage
//
//	calculator := checksum.New()
//	hash := calculator.CalculateRaw(fileContent)
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
