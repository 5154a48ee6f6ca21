package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

var ErrBucketNotConfigured = errors.New("AWS_BUCKET_NAME is not set")

type ItfS3 interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type s3Client struct {
	client     *s3.S3
	session    *session.Session
	bucketName string
}

func New() (ItfS3, error) {
	bucket := os.Getenv("AWS_BUCKET_NAME")
	if bucket == "" {
		return nil, ErrBucketNotConfigured
	}

	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		session:    sess,
		bucketName: bucket,
	}, nil
}

func (s *s3Client) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucketName, key, err)
	}
	return out.Body, nil
}

// PutObject uploads body under key and returns the object location.
func (s *s3Client) PutObject(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	uploader := s3manager.NewUploader(s.session)

	out, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucketName, key, err)
	}
	return out.Location, nil
}

func newSession() (*session.Session, error) {
	cfg := &aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	}
	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		cfg.Credentials = credentials.NewStaticCredentials(id, os.Getenv("AWS_SECRET_ACCESS_KEY"), "")
	}
	if endpoint := os.Getenv("AWS_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	return session.NewSession(cfg)
}
