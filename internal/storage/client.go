// Package storage defines functions used to interact with the
// S3-compatible object store holding originals and previews
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// S3API is the slice of the S3 client the storage layer actually uses,
// kept small so tests can stand in a fake
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Presigner produces time-limited GET URLs for private objects
type Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Client struct {
	api      S3API
	presign  Presigner
	uploader *manager.Uploader

	PublicBucket  string
	PrivateBucket string

	// host part of the storage endpoint, used to build public URLs
	host string
}

func NewClient() (*Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("storage.access_key"),
			viper.GetString("storage.secret_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	endpoint := viper.GetString("storage.endpoint")

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid storage endpoint %q", endpoint)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.Region = viper.GetString("storage.region")
		o.UsePathStyle = true
	})

	c := &Client{
		api:           client,
		presign:       s3.NewPresignClient(client),
		uploader:      manager.NewUploader(client),
		PublicBucket:  viper.GetString("storage.public_bucket"),
		PrivateBucket: viper.GetString("storage.private_bucket"),
		host:          u.Host,
	}

	for _, bucket := range []string{c.PublicBucket, c.PrivateBucket} {
		_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
			Bucket: aws.String(bucket),
		})
		if err != nil {
			var apiErr smithy.APIError

			if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", bucket)
			}

			return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
		}
	}

	return c, nil
}
