package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Namespace under which unprocessed uploads are retained in the private
// bucket. Objects here are written once and never mutated; expiry is a
// bucket-lifecycle concern, not ours
const originalsPrefix = "originals/"

// OriginalFile is a retained upload recovered for a retry
type OriginalFile struct {
	Buffer   []byte
	Filename string
	Mimetype string
}

// StoreOriginal retains the unprocessed upload under a fresh identifier
// before any processing is attempted, so a failed attempt can be retried
// without re-uploading. The identifier is never derived from user input.
func (c *Client) StoreOriginal(ctx context.Context, buf []byte, filename, mimetype string) (fileID, url string, err error) {
	fileID = uuid.NewString()

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}

	key := originalsPrefix + fileID + "." + ext

	zap.L().Debug("Storing original file", zap.String("file_id", fileID), zap.String("filename", filename))

	url, err = c.Upload(ctx, UploadInput{
		Bucket:      c.PrivateBucket,
		Key:         key,
		Body:        buf,
		ContentType: mimetype,
		Public:      false,
		Metadata: map[string]string{
			"original-name":     filename,
			"original-mimetype": mimetype,
			"uploaded-at":       time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to store original file, %w", err)
	}

	zap.L().Info("Original file stored successfully", zap.String("file_id", fileID), zap.String("key", key))

	return fileID, url, nil
}

// FetchOriginal locates a retained upload by its identifier. The
// extension isn't known a priori, so the object is found by listing
// under the originals prefix.
func (c *Client) FetchOriginal(ctx context.Context, fileID string) (*OriginalFile, error) {
	zap.L().Debug("Retrieving original file", zap.String("file_id", fileID))

	list, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.PrivateBucket),
		Prefix: aws.String(originalsPrefix + fileID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list original files, %w", err)
	}

	if len(list.Contents) == 0 || list.Contents[0].Key == nil {
		return nil, fmt.Errorf("original file not found for ID: %s", fileID)
	}

	key := *list.Contents[0].Key

	obj, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.PrivateBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download original file, %w", err)
	}
	defer obj.Body.Close()

	buf, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read original file body, %w", err)
	}

	filename := obj.Metadata["original-name"]
	if filename == "" {
		filename = fileID + ".bin"
	}

	mimetype := obj.Metadata["original-mimetype"]
	if mimetype == "" {
		if obj.ContentType != nil {
			mimetype = *obj.ContentType
		} else {
			mimetype = "application/octet-stream"
		}
	}

	zap.L().Info("Original file retrieved successfully", zap.String("file_id", fileID), zap.String("filename", filename))

	return &OriginalFile{
		Buffer:   buf,
		Filename: filename,
		Mimetype: mimetype,
	}, nil
}

// OriginalURL returns a signed URL for a retained upload whose extension
// is already known
func (c *Client) OriginalURL(ctx context.Context, fileID, ext string) (string, error) {
	return c.SignedURL(ctx, c.PrivateBucket, originalsPrefix+fileID+"."+ext)
}
