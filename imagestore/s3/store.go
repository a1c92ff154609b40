package s3

import (
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/placewalk/placewalk/imagestore"
)

// DefaultURLExpiry is how long presigned GET URLs stay valid.
const DefaultURLExpiry = 15 * time.Minute

// API is the slice of the S3 API the store consumes.
// Narrow by design so tests can fake it.
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner mints presigned GET requests. *s3.PresignClient satisfies it.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Uploader pushes object bodies to S3. *manager.Uploader satisfies it.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Store implements imagestore.Resolver for S3.
type Store struct {
	api       API
	presigner Presigner
	uploader  Uploader
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

// New creates an S3 image store.
// rootPrefix is prepended to all keys (e.g. "images/").
func New(client *s3.Client, bucket, rootPrefix string, opts ...Option) *Store {
	s := &Store{
		api:       client,
		presigner: s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
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

	// Verify existence so a missing key surfaces as ErrNotFound
	// instead of a presigned URL that 404s later.
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return "", imagestore.ErrNotFound
		}
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", imagestore.ErrNotFound
		}
		return "", err
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	}, s3.WithPresignExpires(s.urlExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Put uploads an image through the transfer manager.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err := s.uploader.Upload(ctx, input)
	return err
}

// Delete removes an image.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	return err
}
