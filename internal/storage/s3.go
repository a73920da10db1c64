package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores complaint evidence images in an S3 bucket
type S3Uploader struct {
	client        PutObjectAPI
	bucket        string
	keyPrefix     string
	publicBaseURL string
}

// NewS3Uploader creates an uploader for bucket. Objects are written under
// keyPrefix. publicBaseURL is where the bucket is served from; when empty the
// virtual-hosted S3 URL is used.
func NewS3Uploader(client PutObjectAPI, bucket, keyPrefix, publicBaseURL string) *S3Uploader {
	return &S3Uploader{
		client:        client,
		bucket:        bucket,
		keyPrefix:     strings.Trim(keyPrefix, "/"),
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// UploadImage uploads data as filename and returns its public URL
func (s *S3Uploader) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	key := s.Key(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(http.DetectContentType(data)),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, s.bucket, err)
	}

	return s.PublicURL(key), nil
}

func (s *S3Uploader) Key(filename string) string {
	name := path.Base(filename)
	if s.keyPrefix == "" {
		return name
	}
	return s.keyPrefix + "/" + name
}

// PublicURL returns the public URL for an object key
func (s *S3Uploader) PublicURL(key string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
