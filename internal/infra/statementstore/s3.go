package statementstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/smart-energy/internal/domain/billing"
)

// S3Options locates the statements bucket. Endpoint may carry a scheme; an
// https scheme turns on TLS.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// S3Store keeps exported bill statements in an S3-compatible bucket (R2,
// MinIO, AWS). Re-exporting a bill overwrites its key.
type S3Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewS3Store builds the client. No request is made until the first export.
func NewS3Store(opts S3Options, logger *slog.Logger) (*S3Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("statements bucket is required")
	}
	client, err := minio.New(sanitizeEndpoint(opts.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       strings.HasPrefix(strings.ToLower(strings.TrimSpace(opts.Endpoint)), "https"),
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: opts.Bucket, logger: logger.With("component", "statementstore.s3")}, nil
}

// ensureBucket creates the bucket on first export. A failed check is retried
// on the next export.
func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil || !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			return fmt.Errorf("create statements bucket %s: %w", s.bucket, err)
		}
		s.logger.Info("statements bucket ready", "bucket", s.bucket)
	}
	s.bucketReady = true
	return nil
}

// Put uploads a statement as a downloadable attachment named after the bill.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, mimeType string) (billing.StoredStatement, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return billing.StoredStatement{}, err
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), putOptions(key, mimeType))
	if err != nil {
		return billing.StoredStatement{}, fmt.Errorf("upload statement %s: %w", key, err)
	}
	s.logger.Debug("statement uploaded", "bucket", s.bucket, "key", key, "etag", info.ETag)
	return billing.StoredStatement{Key: key, Size: info.Size, ETag: info.ETag}, nil
}

func putOptions(key, mimeType string) minio.PutObjectOptions {
	return minio.PutObjectOptions{
		ContentType:        mimeType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", path.Base(key)),
		CacheControl:       "no-cache",
		DisableMultipart:   true,
	}
}

// Get opens a stored statement. A missing key or bucket is ErrStatementNotFound.
func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if _, statErr := obj.Stat(); statErr != nil {
		obj.Close()
		switch minio.ToErrorResponse(statErr).Code {
		case "NoSuchKey", "NoSuchBucket":
			return nil, fmt.Errorf("%w: %s", billing.ErrStatementNotFound, key)
		}
		return nil, statErr
	}
	return obj, nil
}

var _ billing.StatementStore = (*S3Store)(nil)

// sanitizeEndpoint reduces a URL to the host:port minio.New expects.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "://"); i >= 0 {
		raw = raw[i+3:]
	}
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
