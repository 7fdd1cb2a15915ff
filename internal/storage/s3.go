package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Client is the subset of the AWS SDK S3 client the provider needs,
// narrowed for testability.
type S3Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Provider stores objects in an S3-compatible bucket. It reuses the same
// aws-sdk-go-v2 config loading the ECS compute provider uses for credentials
// and region resolution.
type S3Provider struct {
	client     S3Client
	presigner  *s3.PresignClient
	bucket     string
	urlTTL     time.Duration
	logger     *zap.Logger
}

// NewS3Provider builds an S3-backed storage provider for the given bucket.
func NewS3Provider(client S3Client, presigner *s3.PresignClient, bucket string, urlTTL time.Duration, logger *zap.Logger) *S3Provider {
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &S3Provider{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		urlTTL:    urlTTL,
		logger:    logger.With(zap.String("component", "storage-s3")),
	}
}

func (p *S3Provider) Name() string { return "s3" }

func (p *S3Provider) Put(ctx context.Context, key string, contentType string, body io.Reader, size int64) (*PutResult, error) {
	uploader := manager.NewUploader(p.client)
	out, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("upload object %s: %w", key, err)
	}

	result := &PutResult{
		Key:         key,
		Bucket:      p.bucket,
		SizeBytes:   size,
		ContentType: contentType,
	}
	if out.ETag != nil {
		result.ETag = *out.ETag
	}
	return result, nil
}

func (p *S3Provider) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}

func (p *S3Provider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (p *S3Provider) SignedURL(ctx context.Context, key string) (string, error) {
	if p.presigner == nil {
		return "", nil
	}
	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.urlTTL))
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", key, err)
	}
	return req.URL, nil
}
