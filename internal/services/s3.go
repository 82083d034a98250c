package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cybersite/internal/config"
	"cybersite/internal/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// StoredObject describes a file written to the bucket.
type StoredObject struct {
	Key string
	URL string
}

// Storage is the object store used for campaign attachments, resource files
// and profile images.
type Storage interface {
	Upload(ctx context.Context, data []byte, filename, contentType, prefix string) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
}

var _ Storage = (*S3Service)(nil)

type S3Service struct {
	client     *s3.Client
	bucketName string
	endpoint   string
	region     string
	publicURL  string
	provider   string
	logger     *logger.Logger
}

func NewS3Service(ctx context.Context, cfg *config.Config) (*S3Service, error) {
	log := logger.New("S3")
	s3cfg := cfg.Storage.S3

	if s3cfg.AccessKey == "" || s3cfg.SecretKey == "" {
		return nil, log.Error("S3 credentials are empty ❌", fmt.Errorf("accessKey or secretKey is empty"))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s3cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s3cfg.AccessKey,
			s3cfg.SecretKey,
			"",
		)),
		awsconfig.WithRetryMode(aws.RetryModeStandard),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config ❌", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	// Verify credentials and bucket access
	_, err = client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s3cfg.BucketName),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return nil, log.Error("Failed to verify S3 credentials ❌", err)
	}

	log.Success("S3 service initialized for bucket %s ✅", s3cfg.BucketName)

	return &S3Service{
		client:     client,
		bucketName: s3cfg.BucketName,
		endpoint:   strings.TrimRight(s3cfg.Endpoint, "/"),
		region:     s3cfg.Region,
		publicURL:  strings.TrimRight(s3cfg.PublicURL, "/"),
		provider:   cfg.Storage.Provider,
		logger:     log,
	}, nil
}

// ObjectKey builds a collision-free key under prefix, keeping the file extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	key := uuid.New().String() + ext
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

// Upload stores data under a fresh key and returns its public URL.
func (s *S3Service) Upload(ctx context.Context, data []byte, filename, contentType, prefix string) (*StoredObject, error) {
	key := ObjectKey(prefix, filename)
	s.logger.Info("📤 Uploading %s as %s", filename, key)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	// R2 rejects canned ACLs; public access is configured on the bucket
	if s.provider != "r2" {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, s.logger.Error("Failed to upload file to storage ❌", err)
	}

	url := s.objectURL(key)
	s.logger.Success("✅ File uploaded successfully: %s", url)
	return &StoredObject{Key: key, URL: url}, nil
}

func (s *S3Service) objectURL(key string) string {
	switch {
	case s.publicURL != "":
		return fmt.Sprintf("%s/%s", s.publicURL, key)
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucketName, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
	}
}

// Delete removes an object. Missing objects are not an error.
func (s *S3Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidInput)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return s.logger.Error("Failed to delete %s ❌", err, key)
	}
	s.logger.Info("🗑️ Deleted object %s", key)
	return nil
}

// SignedURL returns a time-limited download link for a private object.
func (s *S3Service) SignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	presigned, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", s.logger.Error("Failed to generate pre-signed URL ❌", err)
	}
	return presigned.URL, nil
}
