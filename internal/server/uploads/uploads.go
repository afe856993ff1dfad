// Package uploads stores profile images in S3-compatible object storage.
package uploads

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Object is a file received from a client.
type Object struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectUploader stores an object and returns the URL it is reachable at.
type ObjectUploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// PutObjectAPI is the part of *s3.Client the uploader calls.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	AccessKey    string
	SecretKey    string
	Region       string
	Bucket       string
	BaseEndpoint string
}

type S3Uploader struct {
	client   PutObjectAPI
	bucket   string
	endpoint string
	now      func() time.Time
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Uploader builds a path-style client, which is what MinIO expects.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return NewS3UploaderWithClient(client, cfg.Bucket, cfg.BaseEndpoint), nil
}

func NewS3UploaderWithClient(client PutObjectAPI, bucket, endpoint string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, endpoint: endpoint, now: time.Now}
}

// StorageKey returns a fresh object key under a date prefix, keeping the
// original file extension.
func StorageKey(now time.Time, name string) string {
	ext := strings.ToLower(path.Ext(name))
	return fmt.Sprintf("users/%d/%d/%d/%v%s", now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

func (u *S3Uploader) Upload(ctx context.Context, obj Object) (string, error) {
	if obj.Body == nil {
		return "", fmt.Errorf("upload %q: empty body", obj.Name)
	}

	key := StorageKey(u.now(), obj.Name)
	in := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   obj.Body,
	}
	if obj.ContentType != "" {
		in.ContentType = aws.String(obj.ContentType)
	}
	if obj.Size > 0 {
		in.ContentLength = aws.Int64(obj.Size)
	}

	if _, err := u.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("upload %q: %w", obj.Name, err)
	}

	return u.objectURL(key), nil
}

func (u *S3Uploader) objectURL(key string) string {
	return strings.TrimRight(u.endpoint, "/") + "/" + u.bucket + "/" + key
}
