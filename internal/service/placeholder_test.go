package service

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderThumbnail(t *testing.T) {
	encoded, err := PlaceholderThumbnail(writeTestWatermark(t), "Preview unavailable")
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, placeholderWidth, img.Bounds().Dx())
	assert.Equal(t, placeholderHeight, img.Bounds().Dy())
}

func TestPlaceholderThumbnailMissingWatermark(t *testing.T) {
	// The watermark is optional here, the caption alone is enough
	encoded, err := PlaceholderThumbnail(filepath.Join(t.TempDir(), "nope.png"), "Preview unavailable")
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}
