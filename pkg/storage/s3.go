package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
)

// Uploaded images are never overwritten (keys embed a uuid)
const immutableCacheControl = "public, max-age=31536000, immutable"

// S3Client stores listing and profile images in an S3 compatible bucket (AWS, R2, MinIO)
type S3Client struct {
	client         *s3.Client
	bucket         string
	endpoint       string
	cdnURL         string
	basePath       string
	forcePathStyle bool
}

// S3Config holds S3 compatible storage configuration
type S3Config struct {
	Endpoint        string // empty for AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	CDNURL          string // public base URL, preferred over the bucket URL
	BasePath        string // prefix for all objects, e.g. "uploads"
	ForcePathStyle  bool   // MinIO
}

// NewS3Client creates a storage client. No request is made until the first upload.
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}

	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.ForcePathStyle,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	pkglogger.GetLogger().Debug().
		Str("bucket", cfg.Bucket).
		Str("endpoint", cfg.Endpoint).
		Bool("path_style", cfg.ForcePathStyle).
		Msg("s3 client configured")

	return &S3Client{
		client:         s3.New(opts),
		bucket:         cfg.Bucket,
		endpoint:       strings.TrimRight(cfg.Endpoint, "/"),
		cdnURL:         strings.TrimRight(cfg.CDNURL, "/"),
		basePath:       strings.Trim(cfg.BasePath, "/"),
		forcePathStyle: cfg.ForcePathStyle,
	}, nil
}

// UploadResult describes a stored object
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Upload stores body under key (relative to the configured base path)
func (c *S3Client) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*UploadResult, error) {
	fullKey := c.objectKey(key)

	input := &s3.PutObjectInput{
		Bucket:       aws.String(c.bucket),
		Key:          aws.String(fullKey),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(immutableCacheControl),
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("s3 put %s: %w", fullKey, err)
	}

	return &UploadResult{
		Key:         fullKey,
		URL:         c.PublicURL(fullKey),
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (c *S3Client) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if c.basePath == "" {
		return key
	}
	return c.basePath + "/" + key
}

// PublicURL returns the URL clients load an object from: the CDN when configured,
// otherwise the custom endpoint or the AWS virtual-hosted bucket URL.
func (c *S3Client) PublicURL(key string) string {
	switch {
	case c.cdnURL != "":
		return c.cdnURL + "/" + key
	case c.endpoint != "" && c.forcePathStyle:
		return c.endpoint + "/" + c.bucket + "/" + key
	case c.endpoint != "":
		return c.endpoint + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, key)
	}
}

// GenerateKey creates a unique key: <prefix>/<owner>/<yyyy>/<mm>/<uuid><ext>
func GenerateKey(prefix string, ownerID uint64, filename string) string {
	now := time.Now().UTC()
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%d/%02d/%s%s", prefix, ownerID, now.Year(), now.Month(), uuid.NewString(), ext)
}
