package minio

import (
	"context"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/placewalk/placewalk/imagestore"
)

// DefaultURLExpiry is how long presigned GET URLs stay valid.
const DefaultURLExpiry = 15 * time.Minute

// Client is the slice of the MinIO API the store consumes.
// *minio.Client satisfies it.
type Client interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Store implements imagestore.Resolver for MinIO.
type Store struct {
	client    Client
	bucket    string
	prefix    string
	urlExpiry time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithURLExpiry sets the presigned URL lifetime.
func WithURLExpiry(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.urlExpiry = d
		}
	}
}

// New creates a MinIO image store.
// rootPrefix is prepended to all keys (e.g. "images/").
func New(client Client, bucket, rootPrefix string, opts ...Option) *Store {
	s := &Store{
		client:    client,
		bucket:    bucket,
		prefix:    rootPrefix,
		urlExpiry: DefaultURLExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// URL resolves an image key to a presigned GET URL.
func (s *Store) URL(ctx context.Context, key string) (string, error) {
	fullKey := s.key(key)

	_, err := s.client.StatObject(ctx, s.bucket, fullKey, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return "", imagestore.ErrNotFound
		}
		return "", err
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, fullKey, s.urlExpiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Put uploads an image. size may be -1 for streaming uploads.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(key), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Delete removes an image. Removing a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(key), minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil
		}
		return err
	}
	return nil
}
