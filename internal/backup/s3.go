// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/toeirei/stratus/internal/config"
	"github.com/toeirei/stratus/internal/logging"
)

// ErrNoBucket is returned when an upload is requested without a bucket.
var ErrNoBucket = errors.New("backup.s3_bucket is not configured")

// ObjectPutter is the part of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader copies backup files into a bucket.
type Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewUploader builds an Uploader around client.
func NewUploader(client ObjectPutter, bucket, prefix string) *Uploader {
	return &Uploader{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Uploader loads AWS credentials the default way (environment, shared
// files, instance role) and targets cfg.S3Bucket.
func NewS3Uploader(ctx context.Context, cfg config.BackupConfig) (*Uploader, error) {
	if cfg.S3Bucket == "" {
		return nil, ErrNoBucket
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewUploader(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), nil
}

// ObjectKey joins the prefix and the base name of file with "/".
func (u *Uploader) ObjectKey(file string) string {
	base := filepath.Base(file)
	prefix := strings.Trim(u.prefix, "/")
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}

// Upload puts file into the bucket and returns the s3:// location.
func (u *Uploader) Upload(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	key := u.ObjectKey(file)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/zstd"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3://%s/%s: %w", u.bucket, key, err)
	}
	loc := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	logging.Infof("backup: uploaded %s", loc)
	return loc, nil
}
