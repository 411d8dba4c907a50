package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	DefaultUserImageURL       = "https://educalinkbucket.s3.us-east-1.amazonaws.com/default_user.png"
	DefaultGroupImageURL      = "https://educalinkbucket.s3.us-east-1.amazonaws.com/default_group.png"
	DefaultBackgroundImageURL = "https://educalinkbucket.s3.us-east-1.amazonaws.com/default_portrait_white.png"
)

// ObjectStorage uploads a file and returns its public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type S3Storage struct {
	Client *s3.Client
	Bucket string
	Region string
}

func NewS3Storage(ctx context.Context, bucket, region string) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, WrapError(err, "aws config")
	}
	return &S3Storage{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
		Region: region,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := ObjectKey(filename)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", WrapError(err, "s3 upload")
	}
	return PublicURL(s.Bucket, s.Region, key), nil
}

// ObjectKey prefixes the original filename with the upload's unix
// timestamp, matching the keys already present in the bucket.
func ObjectKey(filename string) string {
	return fmt.Sprintf("%d_%s", time.Now().Unix(), filename)
}

func PublicURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
