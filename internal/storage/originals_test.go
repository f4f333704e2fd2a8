package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
	acl         types.ObjectCannedACL
}

// fakeS3 keeps objects in a map keyed by bucket/key
type fakeS3 struct {
	objects map[string]*storedObject
	putErr  error
	listErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]*storedObject{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.objects[*in.Bucket+"/"+*in.Key] = &storedObject{
		body:        body,
		contentType: aws.ToString(in.ContentType),
		metadata:    in.Metadata,
		acl:         in.ACL,
	}

	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}

	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(obj.body)),
		ContentType: aws.String(obj.contentType),
		Metadata:    obj.metadata,
	}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := &s3.ListObjectsV2Output{}
	for k := range f.objects {
		bucket, key, _ := strings.Cut(k, "/")
		if bucket == *in.Bucket && strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}

	return out, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{
		URL: "https://signed.example/" + *in.Bucket + "/" + *in.Key,
	}, nil
}

func newTestClient(api S3API) *Client {
	return &Client{
		api:           api,
		presign:       fakePresigner{},
		PublicBucket:  "previews-public",
		PrivateBucket: "previews-private",
		host:          "s3.us-central-1.wasabisys.com",
	}
}

func TestStoreFetchOriginalRoundTrip(t *testing.T) {
	f := newFakeS3()
	c := newTestClient(f)
	ctx := context.Background()

	payload := []byte("some video bytes")

	fileID, url, err := c.StoreOriginal(ctx, payload, "clip.mp4", "video/mp4")
	require.NoError(t, err)
	assert.NotEmpty(t, fileID)
	assert.Contains(t, url, "https://signed.example/")

	// Stored under the originals namespace, private, original extension kept
	obj, ok := f.objects["previews-private/originals/"+fileID+".mp4"]
	require.True(t, ok, "expected object under originals/<fileId>.mp4")
	assert.Equal(t, types.ObjectCannedACLPrivate, obj.acl)
	assert.Equal(t, "video/mp4", obj.contentType)
	assert.Equal(t, "clip.mp4", obj.metadata["original-name"])
	assert.Equal(t, "video/mp4", obj.metadata["original-mimetype"])

	got, err := c.FetchOriginal(ctx, fileID)
	require.NoError(t, err)
	assert.Equal(t, payload, got.Buffer)
	assert.Equal(t, "clip.mp4", got.Filename)
	assert.Equal(t, "video/mp4", got.Mimetype)
}

func TestStoreOriginalNoExtension(t *testing.T) {
	f := newFakeS3()
	c := newTestClient(f)

	fileID, _, err := c.StoreOriginal(context.Background(), []byte("x"), "blob", "application/octet-stream")
	require.NoError(t, err)

	_, ok := f.objects["previews-private/originals/"+fileID+".bin"]
	assert.True(t, ok, "extension should default to bin")
}

func TestFetchOriginalNotFound(t *testing.T) {
	c := newTestClient(newFakeS3())

	_, err := c.FetchOriginal(context.Background(), "11111111-2222-3333-4444-555555555555")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "original file not found for ID: 11111111-2222-3333-4444-555555555555")
}

func TestFetchOriginalMetadataFallbacks(t *testing.T) {
	f := newFakeS3()
	c := newTestClient(f)

	// Object written without metadata, e.g. by an older deployment
	f.objects["previews-private/originals/abc.mp4"] = &storedObject{
		body:        []byte("x"),
		contentType: "video/mp4",
	}

	got, err := c.FetchOriginal(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc.bin", got.Filename)
	assert.Equal(t, "video/mp4", got.Mimetype)
}

func TestStorePreviewPublicURL(t *testing.T) {
	f := newFakeS3()
	c := newTestClient(f)

	url, err := c.StorePreview(context.Background(), "1700000000000-clip.webp", []byte("img"), "image/webp", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://previews-public.s3.us-central-1.wasabisys.com/1700000000000-clip.webp", url)

	obj := f.objects["previews-public/1700000000000-clip.webp"]
	require.NotNil(t, obj)
	assert.Equal(t, types.ObjectCannedACLPublicRead, obj.acl)
}

func TestUploadPutFailure(t *testing.T) {
	f := newFakeS3()
	f.putErr = errors.New("access denied")
	c := newTestClient(f)

	_, _, err := c.StoreOriginal(context.Background(), []byte("x"), "a.png", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
