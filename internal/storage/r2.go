package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// R2Config configures a Cloudflare R2 bucket reached through the S3 API.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	PublicBaseURL   string
	MaxBytes        int64
}

// R2PhotoStore keeps photos in an S3 compatible bucket and returns public URLs.
type R2PhotoStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	maxBytes      int64
}

func NewR2PhotoStore(cfg R2Config) (*R2PhotoStore, error) {
	if cfg.AccountID == "" || cfg.BucketName == "" || cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("r2 photo store requires account id, bucket name and public base url")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      region,
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	log.Info().Str("bucket", cfg.BucketName).Msg("initialized R2 photo store")

	return &R2PhotoStore{
		client:        client,
		bucket:        cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes:      cfg.MaxBytes,
	}, nil
}

func (s *R2PhotoStore) Save(ctx context.Context, photo PhotoUpload) (string, error) {
	ext, contentType, err := ValidatePhoto(photo, s.maxBytes)
	if err != nil {
		return "", err
	}
	key := "profiles/" + objectName(ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(photo.Data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(photo.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return s.publicBaseURL + "/" + key, nil
}

func (s *R2PhotoStore) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.publicBaseURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("photo reference %q does not belong to bucket %s", ref, s.bucket)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo %s: %w", key, err)
	}
	return nil
}
