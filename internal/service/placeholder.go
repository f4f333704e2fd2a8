package service

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	placeholderWidth  = 640
	placeholderHeight = 360
)

// PlaceholderThumbnail synthesizes a still image used in place of a real
// video frame when the video itself couldn't be watermarked: a solid
// dark background with the watermark centered and a caption near the
// bottom. Returns the PNG as base64.
func PlaceholderThumbnail(watermarkPath, caption string) (string, error) {
	canvas := imaging.New(placeholderWidth, placeholderHeight, color.NRGBA{R: 24, G: 24, B: 28, A: 255})

	// The watermark is best-effort here. If the asset is unreadable the
	// caption alone still identifies the placeholder
	if watermark, err := imaging.Open(watermarkPath); err == nil {
		watermark = imaging.Resize(watermark, imageWatermarkWidth, 0, imaging.Lanczos)
		canvas = imaging.OverlayCenter(canvas, watermark, 1.0)
	}

	if caption != "" {
		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(color.NRGBA{R: 200, G: 200, B: 205, A: 255}),
			Face: basicfont.Face7x13,
		}

		width := d.MeasureString(caption)
		d.Dot = fixed.Point26_6{
			X: (fixed.I(placeholderWidth) - width) / 2,
			Y: fixed.I(placeholderHeight - 24),
		}
		d.DrawString(caption)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
