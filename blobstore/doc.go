// Package blobstore provides storage abstraction for rett's graph snapshots.
//
// Store is the interface for reading and writing named snapshot blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with atomic writes
//   - MemoryStore: in-memory, for tests and ephemeral graphs
//   - minio.Store: any S3-compatible object storage
//   - s3.Store: Amazon S3 with range reads
//
// # Replication
//
// Copy and Mirror transfer snapshots between stores, for example from a
// local working directory to an object storage bucket:
//
//	err := blobstore.Mirror(ctx, remote, local, "graphs/")
package blobstore
