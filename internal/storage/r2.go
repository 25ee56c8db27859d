package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vaulty-hq/vaulty/internal/config"
)

// R2Storage persists blobs in a Cloudflare R2 (S3-compatible) bucket. The
// object key doubles as the storage path recorded on the file row.
type R2Storage struct {
	client *s3.Client
	bucket string
}

// NewR2Storage builds an S3 client against the account's R2 endpoint using
// static credentials.
func NewR2Storage(cfg config.R2Config) *R2Storage {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{client: client, bucket: cfg.BucketName}
}

// hashReader hashes and counts the stream as the SDK consumes it.
type hashReader struct {
	r      io.Reader
	hasher io.Writer
	size   int64
}

func (h *hashReader) Read(p []byte) (int, error) {
	n, err := h.r.Read(p)
	if n > 0 {
		h.hasher.Write(p[:n])
		h.size += int64(n)
	}
	return n, err
}

func (s *R2Storage) Save(ctx context.Context, storedName string, r io.Reader) (*SaveResult, error) {
	hasher := sha256.New()
	body := &hashReader{r: r, hasher: hasher}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storedName),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	return &SaveResult{
		Path:        storedName,
		Size:        body.size,
		ContentHash: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *R2Storage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (s *R2Storage) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	return err
}
