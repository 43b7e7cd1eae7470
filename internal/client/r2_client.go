package client

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/intellijobs/api/internal/config"
)

const r2Scheme = "r2://"

// FileStore keeps uploaded resume files until the extract task reads them.
// Save returns a locator that Open understands.
type FileStore interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
	Delete(ctx context.Context, locator string) error
}

// R2Client implements FileStore for Cloudflare R2
type R2Client struct {
	s3Client   *s3.Client
	bucketName string
}

// NewR2Client creates a new R2 storage client
func NewR2Client(cfg *config.R2Config) (*R2Client, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("R2 configuration incomplete")
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &R2Client{
		s3Client:   s3Client,
		bucketName: cfg.BucketName,
	}, nil
}

// Save uploads a file to R2 and returns its r2:// locator
func (c *R2Client) Save(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return r2Scheme + key, nil
}

// Open streams an object previously stored with Save
func (c *R2Client) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(strings.TrimPrefix(locator, r2Scheme)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read from R2: %w", err)
	}
	return out.Body, nil
}

// Delete removes a file from R2
func (c *R2Client) Delete(ctx context.Context, locator string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(strings.TrimPrefix(locator, r2Scheme)),
	}

	if _, err := c.s3Client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *R2Client) IsConfigured() bool {
	return c.s3Client != nil && c.bucketName != ""
}

// NewFileStore picks R2 when a bucket is configured and the local upload
// directory otherwise. The API and the worker must resolve the same store.
func NewFileStore(cfg *config.Config) (FileStore, error) {
	if cfg.R2.BucketName == "" {
		log.Printf("Storing resumes in %s", cfg.Storage.UploadDir)
		return NewLocalStore(cfg.Storage.UploadDir)
	}

	r2, err := NewR2Client(&cfg.R2)
	if err != nil {
		return nil, err
	}
	log.Printf("Storing resumes in bucket %s", cfg.R2.BucketName)
	return r2, nil
}

// LocalStore implements FileStore on a directory shared by API and workers.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	path := filepath.Join(s.dir, filepath.Clean("/"+key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing upload file: %w", err)
	}
	return path, nil
}

func (s *LocalStore) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	return os.Open(locator)
}

func (s *LocalStore) Delete(_ context.Context, locator string) error {
	if err := os.Remove(locator); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
