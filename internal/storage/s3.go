package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sdko-org/loganalyzer/internal/config"
	"github.com/sirupsen/logrus"
)

type uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

var _ Storage = (*S3Storage)(nil)

type S3Storage struct {
	uploader uploader
	bucket   string
	log      *logrus.Entry
}

func NewS3Storage(logger *logrus.Logger, cfg config.S3Config) (*S3Storage, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return newS3Storage(logger, s3manager.NewUploader(sess), cfg.Bucket), nil
}

func newS3Storage(logger *logrus.Logger, up uploader, bucket string) *S3Storage {
	return &S3Storage{
		uploader: up,
		bucket:   bucket,
		log:      logger.WithField("component", "s3_storage"),
	}
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"bucket":   s.bucket,
		"key":      key,
		"location": out.Location,
	}).Info("Report uploaded")
	return nil
}

// ReportKey builds the object key for a run's report file.
func ReportKey(prefix, runID, fileName string) string {
	return path.Join(prefix, runID, path.Base(fileName))
}
