package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3TableStore keeps the persisted CSV tables in an S3 bucket.
type S3TableStore struct {
	client     S3Client
	bucketName string
	prefix     string
}

func NewS3TableStore(client S3Client, bucketName, prefix string) *S3TableStore {
	return &S3TableStore{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
	}
}

func (s *S3TableStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Read returns the object body. Missing objects yield an error wrapping
// fs.ErrNotExist.
func (s *S3TableStore) Read(ctx context.Context, name string) ([]byte, error) {
	if s.bucketName == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("table %s: %w", name, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("getting %s from S3: %w", name, err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s from S3: %w", name, err)
	}
	return data, nil
}

func (s *S3TableStore) Write(ctx context.Context, name string, data []byte) error {
	if s.bucketName == "" {
		return fmt.Errorf("empty bucket name")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("saving %s to S3: %w", name, err)
	}

	log.Debug().Str("table", name).Int("bytes", len(data)).Msg("Saved table to S3")
	return nil
}
