// Package services sequences metadata loads.
//
// A LoadService owns the store, the file system and the load policy. Every
// public operation runs in a single transaction: on any error nothing is
// committed, and transient store failures retry the whole operation, which
// is safe because unchanged files are skipped by content hash.
//
// A top-level load walks these steps:
//
//  1. register the manifest and its discriminators
//  2. write manifest options, defaults and code maps
//  3. qualify every sub-file, remove stale ones, supersede changed ones
//  4. parse the files that need it, concurrently
//  5. batch-load type files, then all other files
//  6. run deferred cluster extensions and global attribute defaults
//  7. resolve named references across the load
//  8. check the manifest's attribute access interface list, then commit
package services
