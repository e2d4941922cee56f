// Package archive keeps a copy of uploaded audio in S3 compatible object storage.
package archive

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultContentType = "application/octet-stream"

// audioTypes covers the formats the transcription API accepts. The mime
// package's built-in table has none of them.
var audioTypes = map[string]string{
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".mpeg": "audio/mpeg",
	".mpga": "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// Store persists an audio object under key.
type Store interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64) error
}

// Noop discards every object. Used when no bucket is configured.
type Noop struct{}

// Put does nothing.
func (Noop) Put(context.Context, string, io.ReadSeeker, int64) error { return nil }

// Key builds the object key for a transcription's audio:
// audio/<user>/<yyyy>/<mm>/<dd>/<id><ext>.
func Key(userID, transcriptionID, ext string, at time.Time) string {
	return path.Join("audio", userID, at.UTC().Format("2006/01/02"), transcriptionID+ext)
}

// S3Config configures the S3 store.
type S3Config struct {
	Bucket string
	Region string
	// Endpoint overrides the AWS endpoint (MinIO, LocalStack). Path-style
	// addressing is used whenever it is set.
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3 uploads objects with PutObject.
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 builds an S3 client. Static credentials are used when both keys are
// set; otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads body. The content type is derived from the key's extension.
func (s *S3) Put(ctx context.Context, key string, body io.ReadSeeker, size int64) error {
	contentType := ContentType(path.Ext(key))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// ContentType maps a file extension to a MIME type.
func ContentType(ext string) string {
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return defaultContentType
}
