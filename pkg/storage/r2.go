package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// R2Storage reads and writes small text objects in an R2 (S3 compatible) bucket.
type R2Storage struct {
	client     *s3.Client
	bucketName string
	timeout    time.Duration
}

func NewR2Storage(ctx context.Context, accountId, accessKey, secretKey, bucketName string, timeout time.Duration) (*R2Storage, error) {
	if bucketName == "" {
		return nil, errors.New("r2 bucket name is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountId))
		o.UsePathStyle = true
	})

	return NewR2StorageWithClient(client, bucketName, timeout), nil
}

// NewR2StorageWithClient wraps an already configured client (custom endpoints, tests).
func NewR2StorageWithClient(client *s3.Client, bucketName string, timeout time.Duration) *R2Storage {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &R2Storage{
		client:     client,
		bucketName: bucketName,
		timeout:    timeout,
	}
}

// ObjectKey strips leading slashes so "/a/b" and "a/b" name the same object.
func ObjectKey(key string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", errors.New("invalid object key")
	}
	return key, nil
}

// GetObject returns the object body, or found=false when the key does not exist.
func (s *R2Storage) GetObject(ctx context.Context, key string) ([]byte, bool, error) {
	key, err := ObjectKey(key)
	if err != nil {
		return nil, false, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetObject(reqCtx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s from R2: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s body from R2: %w", key, err)
	}
	return data, true, nil
}

// PutObject uploads data under key, replacing any previous object.
func (s *R2Storage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	key, err := ObjectKey(key)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.client.PutObject(reqCtx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to R2: %w", key, err)
	}
	return nil
}

// DeleteObject removes key. S3 treats deleting a missing key as success.
func (s *R2Storage) DeleteObject(ctx context.Context, key string) error {
	key, err := ObjectKey(key)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.client.DeleteObject(reqCtx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from R2: %w", key, err)
	}
	return nil
}
