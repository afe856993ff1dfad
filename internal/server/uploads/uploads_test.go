package uploads

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutObject struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutObject) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.body = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestStorageKey(t *testing.T) {
	now := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	k := StorageKey(now, "Avatar.PNG")
	assert.Regexp(t, regexp.MustCompile(`^users/2026/3/7/[0-9a-f-]{36}\.png$`), k)
	assert.NotEqual(t, k, StorageKey(now, "Avatar.PNG"))

	assert.Regexp(t, regexp.MustCompile(`^users/2026/3/7/[0-9a-f-]{36}$`), StorageKey(now, "noext"))
}

func TestS3Uploader_Upload(t *testing.T) {
	fake := &fakePutObject{}
	u := NewS3UploaderWithClient(fake, "avatars", "http://127.0.0.1:9000/")

	url, err := u.Upload(context.Background(), Object{
		Name: "me.jpg", ContentType: "image/jpeg", Size: 5, Body: strings.NewReader("bytes"),
	})
	require.NoError(t, err)

	require.NotNil(t, fake.in)
	assert.Equal(t, "avatars", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.in.ContentType))
	assert.Equal(t, int64(5), aws.ToInt64(fake.in.ContentLength))
	assert.Equal(t, "bytes", fake.body)
	assert.Equal(t, "http://127.0.0.1:9000/avatars/"+aws.ToString(fake.in.Key), url)
}

func TestS3Uploader_PutError(t *testing.T) {
	fake := &fakePutObject{err: errors.New("access denied")}
	u := NewS3UploaderWithClient(fake, "avatars", "http://minio")

	_, err := u.Upload(context.Background(), Object{Name: "a.png", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3Uploader_EmptyBody(t *testing.T) {
	fake := &fakePutObject{}
	u := NewS3UploaderWithClient(fake, "avatars", "http://minio")

	_, err := u.Upload(context.Background(), Object{Name: "a.png"})
	require.Error(t, err)
	assert.Nil(t, fake.in)
}

func TestNewS3Uploader(t *testing.T) {
	u, err := NewS3Uploader(context.Background(), S3Config{
		AccessKey: "admin", SecretKey: "secret", Region: "us-east-1",
		Bucket: "avatars", BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	assert.Equal(t, "avatars", u.bucket)
}

func TestNewS3Uploader_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = orig }()
	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Uploader(context.Background(), S3Config{})
	assert.Error(t, err)
}
