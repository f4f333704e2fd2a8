package validators

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename, contentType string) *multipart.FileHeader {
	t.Helper()

	header := textproto.MIMEHeader{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	return &multipart.FileHeader{
		Filename: filename,
		Header:   header,
		Size:     16,
	}
}

func TestFileValidatorNilHeader(t *testing.T) {
	code, _, err := FileValidator(nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestFileValidatorNameTooLong(t *testing.T) {
	code, _, err := FileValidator(fileHeader(t, strings.Repeat("a", 300)+".png", "image/png"), "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileNameTooLong)
}

func TestFileValidatorTrustsDeclaredType(t *testing.T) {
	code, mime, err := FileValidator(fileHeader(t, "clip.mp4", "video/mp4"), "")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "video/mp4", mime)
}

func TestFileValidatorImageFamily(t *testing.T) {
	_, mime, err := FileValidator(fileHeader(t, "photo.png", "image/png"), "image")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	code, _, err := FileValidator(fileHeader(t, "clip.mp4", "video/mp4"), "image")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestFileValidatorVideoFamily(t *testing.T) {
	_, mime, err := FileValidator(fileHeader(t, "clip.webm", "video/webm"), "video")
	require.NoError(t, err)
	assert.Equal(t, "video/webm", mime)

	code, _, err := FileValidator(fileHeader(t, "photo.png", "image/png"), "video")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrNotVideo)
}

func TestProcessingOptsValidator(t *testing.T) {
	code, err := ProcessingOptsValidator(nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = ProcessingOptsValidator(&ProcessingOptions{Quality: 80, Width: 640, Height: 360})
	assert.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = ProcessingOptsValidator(&ProcessingOptions{Quality: -1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.EqualError(t, err, "quality must be a positive number")

	code, err = ProcessingOptsValidator(&ProcessingOptions{Width: -10})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.EqualError(t, err, "width and height must be positive numbers")
}
