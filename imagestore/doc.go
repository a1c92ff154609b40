// Package imagestore resolves the image assets that catalog entries
// reference by key.
//
// Resolver is the interface the catalog consumes: it turns an image
// key into a URL the app can render (for cloud backends a presigned
// GET URL) and accepts uploads for seeding tools. Implementations
// must be safe for concurrent use.
//
// # Built-in implementations
//
//   - Memory: in-process store for tests and examples
//   - s3.Store: Amazon S3 with presigned URLs and managed uploads
//   - minio.Store: MinIO and other S3-compatible storage
//
// Prefetch resolves a whole page of image keys concurrently so the
// app can warm its image cache while the list renders.
package imagestore
