// Package s3 implements imagestore.Resolver for Amazon S3.
//
// URLs are presigned GET URLs with a configurable expiry, and uploads
// go through the S3 transfer manager so large images are split into
// parallel multipart uploads.
package s3
