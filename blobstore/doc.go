// Package blobstore provides read access to stored document dumps.
//
// A Store opens named blobs as streams. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible storage
package blobstore
