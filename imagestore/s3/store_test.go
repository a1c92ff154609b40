package s3

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placewalk/placewalk/imagestore"
)

type fakeAPI struct {
	headErr   error
	headKeys  []string
	deleted   []string
	deleteErr error
}

func (f *fakeAPI) HeadObject(_ context.Context, params *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	f.headKeys = append(f.headKeys, aws.ToString(params.Key))
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &awss3.HeadObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, params *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &awss3.DeleteObjectOutput{}, nil
}

type fakePresigner struct {
	keys []string
	err  error
}

func (f *fakePresigner) PresignGetObject(_ context.Context, params *awss3.GetObjectInput, _ ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	key := aws.ToString(params.Key)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{
		URL: "https://bucket.s3.amazonaws.com/" + key + "?X-Amz-Signature=sig",
	}, nil
}

type fakeUploader struct {
	inputs []*awss3.PutObjectInput
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, input *awss3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{}, nil
}

func testStore(api *fakeAPI, presigner *fakePresigner, uploader *fakeUploader) *Store {
	return &Store{
		api:       api,
		presigner: presigner,
		uploader:  uploader,
		bucket:    "bucket",
		prefix:    "images",
		urlExpiry: time.Minute,
	}
}

func TestStore_URL(t *testing.T) {
	api := &fakeAPI{}
	presigner := &fakePresigner{}
	s := testStore(api, presigner, &fakeUploader{})

	u, err := s.URL(context.Background(), "louvre.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/images/louvre.jpg?X-Amz-Signature=sig", u)
	assert.Equal(t, []string{"images/louvre.jpg"}, api.headKeys, "existence is checked before presigning")
	assert.Equal(t, []string{"images/louvre.jpg"}, presigner.keys)
}

func TestStore_URL_NotFound(t *testing.T) {
	api := &fakeAPI{headErr: &types.NotFound{}}
	presigner := &fakePresigner{}
	s := testStore(api, presigner, &fakeUploader{})

	_, err := s.URL(context.Background(), "ghost.jpg")
	require.ErrorIs(t, err, imagestore.ErrNotFound)
	assert.Empty(t, presigner.keys, "missing keys must not be presigned")
}

func TestStore_Put(t *testing.T) {
	uploader := &fakeUploader{}
	s := testStore(&fakeAPI{}, &fakePresigner{}, uploader)

	err := s.Put(context.Background(), "louvre.jpg", strings.NewReader("jpeg bytes"), -1, "image/jpeg")
	require.NoError(t, err)

	require.Len(t, uploader.inputs, 1)
	in := uploader.inputs[0]
	assert.Equal(t, "bucket", aws.ToString(in.Bucket))
	assert.Equal(t, "images/louvre.jpg", aws.ToString(in.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(in.ContentType))
}

func TestStore_Delete(t *testing.T) {
	api := &fakeAPI{}
	s := testStore(api, &fakePresigner{}, &fakeUploader{})

	require.NoError(t, s.Delete(context.Background(), "louvre.jpg"))
	assert.Equal(t, []string{"images/louvre.jpg"}, api.deleted)
}
