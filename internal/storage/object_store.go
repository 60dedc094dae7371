// Package storage uploads work log attachments (site photos, delivery
// notes, receipts) to an S3-compatible bucket such as Cloudflare R2.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"worklog-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type ObjectStore struct {
	client *s3.Client
	bucket string
}

// New builds an object store from config. Returns nil when storage is not
// configured; uploads are then rejected but the rest of the API keeps working.
func New(cfg *config.Config) *ObjectStore {
	if cfg.Storage.Bucket == "" || cfg.Storage.AccessKey == "" {
		log.Println("[Storage] Object storage not configured, attachment uploads disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		log.Printf("[Storage] Failed to configure client: %v", err)
		return nil
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		}
	})

	log.Printf("[Storage] Using bucket %s", cfg.Storage.Bucket)
	return &ObjectStore{client: client, bucket: cfg.Storage.Bucket}
}

// Put uploads one object and returns its key.
func (o *ObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

// Delete removes one object, used to clean up an upload whose attach was
// rejected.
func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Get streams one object back, used to proxy attachments to the browser.
func (o *ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", key, err)
	}
	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return out.Body, contentType, nil
}

// AttachmentKey builds the object key for a work log attachment.
func AttachmentKey(workLogID int, kind, filename string) string {
	return fmt.Sprintf("work-logs/%d/%s/%d-%s", workLogID, kind, time.Now().UnixNano(), filename)
}
