package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// Objects above this size go through the multipart uploader
const multipartThreshold = 12 << 20

const signedURLExpiry = time.Hour

type UploadInput struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
	Public      bool
	Metadata    map[string]string
}

// Upload puts an object and returns its URL: a predictable public URL
// for public objects, a one-hour signed URL for private ones
func (c *Client) Upload(ctx context.Context, in UploadInput) (string, error) {
	zap.L().Debug("Uploading file",
		zap.String("bucket", in.Bucket),
		zap.String("key", in.Key),
		zap.String("content_type", in.ContentType))

	acl := types.ObjectCannedACLPrivate
	if in.Public {
		acl = types.ObjectCannedACLPublicRead
	}

	put := &s3.PutObjectInput{
		Bucket:        aws.String(in.Bucket),
		Key:           aws.String(in.Key),
		Body:          bytes.NewReader(in.Body),
		ContentLength: aws.Int64(int64(len(in.Body))),
		ContentType:   aws.String(in.ContentType),
		ACL:           acl,
		Metadata:      in.Metadata,
	}

	var err error
	if len(in.Body) > multipartThreshold && c.uploader != nil {
		_, err = c.uploader.Upload(ctx, put)
	} else {
		_, err = c.api.PutObject(ctx, put)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload object, %w", err)
	}

	if in.Public {
		return c.PublicURL(in.Key), nil
	}

	return c.SignedURL(ctx, in.Bucket, in.Key)
}

// StorePreview uploads a processed preview into the public bucket and
// returns its predictable public URL
func (c *Client) StorePreview(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error) {
	return c.Upload(ctx, UploadInput{
		Bucket:      c.PublicBucket,
		Key:         key,
		Body:        body,
		ContentType: contentType,
		Public:      true,
		Metadata:    metadata,
	})
}

// PublicURL builds the predictable URL of an object in the public bucket
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", c.PublicBucket, c.host, key)
}

// SignedURL returns a time-limited GET URL for a private object
func (c *Client) SignedURL(ctx context.Context, bucket, key string) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = signedURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign object, %w", err)
	}

	return req.URL, nil
}
