// Package storage snapshots ledger workbooks to S3 before each rewrite,
// so a bad merge can be rolled back by hand.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Backup uploads ledger snapshots to a bucket.
type S3Backup struct {
	client *s3.Client
	bucket string
}

// NewS3Backup creates a backup client for the given bucket.
func NewS3Backup(ctx context.Context, bucket, region, profile string) (*S3Backup, error) {
	var cfg aws.Config
	var err error
	if profile != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &S3Backup{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Upload stores one snapshot of the ledger bytes under
// snapshots/<ledger-name>/<timestamp>.xlsx and returns the key.
func (b *S3Backup) Upload(ctx context.Context, ledgerPath string, data []byte) (string, error) {
	key := fmt.Sprintf("snapshots/%s/%s.xlsx",
		filepath.Base(ledgerPath),
		time.Now().UTC().Format("2006-01-02T15-04-05Z"),
	)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
	})
	if err != nil {
		return "", fmt.Errorf("upload ledger snapshot %s: %w", key, err)
	}
	return key, nil
}
