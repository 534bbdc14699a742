package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SpacesService writes objects to a DigitalOcean Spaces (S3-compatible) bucket
type SpacesService struct {
	client *s3.Client
	bucket string
	region string
	Root   string
}

func NewSpacesService(ctx context.Context, spacesKey, spacesSecret, region, bucket, root string) (*SpacesService, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.digitaloceanspaces.com", region))
	})

	return &SpacesService{
		client: client,
		bucket: bucket,
		region: region,
		Root:   strings.Trim(root, "/"),
	}, nil
}

// PutObject uploads body under Root/key
func (s *SpacesService) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	fullKey := s.objectKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", fullKey, err)
	}
	return nil
}

func (s *SpacesService) GetObjectURL(key string) string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, s.objectKey(key))
}

func (s *SpacesService) objectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.Root == "" {
		return key
	}
	return s.Root + "/" + key
}
