// Package minio implements imagestore.Resolver for MinIO and other
// S3-compatible object storage.
package minio
