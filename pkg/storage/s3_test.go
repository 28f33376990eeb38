package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string]string
	puts    []*s3.PutObjectInput
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: make(map[string]string)}
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = string(body)
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeBucket) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func presignStub(_ context.Context, in *s3.GetObjectInput, expires time.Duration) (string, error) {
	return "https://signed.example/" + aws.ToString(in.Key) + "?ttl=" + expires.String(), nil
}

func TestS3StorageRoundTripWithPrefix(t *testing.T) {
	ctx := context.Background()
	bucket := newFakeBucket()
	s := newS3Storage(bucket, presignStub, S3Config{Bucket: "media", KeyPrefix: "/blog/"})

	require.NoError(t, s.Write(ctx, "posts/a.png", strings.NewReader("png"), 3, "image/png"))
	require.Contains(t, bucket.objects, "blog/posts/a.png")

	put := bucket.puts[0]
	assert.Equal(t, "image/png", aws.ToString(put.ContentType))
	assert.Equal(t, immutableCacheControl, aws.ToString(put.CacheControl))
	assert.EqualValues(t, 3, aws.ToInt64(put.ContentLength))

	ok, err := s.Exists(ctx, "posts/a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Read(ctx, "posts/a.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "png", string(body))

	require.NoError(t, s.Delete(ctx, "posts/a.png"))
	ok, err = s.Exists(ctx, "posts/a.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Read(ctx, "posts/a.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestS3StorageURLs(t *testing.T) {
	ctx := context.Background()

	signed := newS3Storage(newFakeBucket(), presignStub, S3Config{Bucket: "media"})
	url, err := signed.GetURL(ctx, "posts/a.png", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/posts/a.png?ttl=1h0m0s", url)

	public := newS3Storage(newFakeBucket(), presignStub, S3Config{
		Bucket:    "media",
		KeyPrefix: "blog",
		PublicURL: "https://cdn.example/",
	})
	url, err = public.GetURL(ctx, "posts/a.png", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/blog/posts/a.png", url)
}

func TestS3StorageRejectsBadKeys(t *testing.T) {
	s := newS3Storage(newFakeBucket(), presignStub, S3Config{Bucket: "media"})

	err := s.Write(context.Background(), "", strings.NewReader("x"), 1, "")
	assert.Error(t, err)

	key, err := s.objectKey("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", key)
}

func TestS3StoragePresignError(t *testing.T) {
	failing := func(context.Context, *s3.GetObjectInput, time.Duration) (string, error) {
		return "", errors.New("no credentials")
	}
	s := newS3Storage(newFakeBucket(), failing, S3Config{Bucket: "media"})

	_, err := s.GetURL(context.Background(), "posts/a.png", time.Minute)
	assert.ErrorContains(t, err, "no credentials")
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{})
	assert.Error(t, err)
}
