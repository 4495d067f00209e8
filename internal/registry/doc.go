// Package registry is the content registry: one PACKAGE row per metadata
// file, keyed by path and carrying the content hash of the last load.
//
// Qualify decides whether a file has to be parsed again. When it has,
// Supersede removes everything the previous version inserted so the new
// content is inserted from scratch instead of merged. Packages are also
// attached to sessions and carry option categories declared by manifests.
//
// Every function runs inside the caller's transaction; nothing here commits.
package registry
