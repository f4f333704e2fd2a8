package service

import (
	"bytes"
	"fmt"
	"image/color"

	"previewkit/preview-api/validators"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Width the watermark asset is scaled to before compositing onto images.
// The video path instead scales it relative to the source resolution
const imageWatermarkWidth = 200

// ImageBuilder produces fixed-aspect watermarked WebP previews.
// Unlike the video path there is no fallback to the original: a corrupt
// image or a missing watermark asset fails the build outright.
type ImageBuilder struct {
	watermarkPath string
	quality       int
	width         int
	height        int
}

func NewImageBuilder() *ImageBuilder {
	return &ImageBuilder{
		watermarkPath: viper.GetString("paths.watermark"),
		quality:       viper.GetInt("processing.image_quality"),
		width:         viper.GetInt("processing.image_width"),
		height:        viper.GetInt("processing.image_height"),
	}
}

func (b *ImageBuilder) Build(original []byte, opts *validators.ProcessingOptions) (*Result, error) {
	zap.L().Debug("Processing image preview")

	width, height, quality := b.width, b.height, b.quality
	if opts != nil {
		if opts.Width > 0 {
			width = opts.Width
		}
		if opts.Height > 0 {
			height = opts.Height
		}
		if opts.Quality > 0 {
			quality = opts.Quality
		}
	}

	src, err := imaging.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	// Fit mode "contain": preserve the aspect ratio and pad the rest of
	// the canvas with transparency, which WebP keeps
	fitted := imaging.Fit(src, width, height, imaging.Lanczos)
	canvas := imaging.New(width, height, color.NRGBA{})
	canvas = imaging.PasteCenter(canvas, fitted)

	watermark, err := imaging.Open(b.watermarkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: failed to read watermark: %w", err)
	}

	watermark = imaging.Resize(watermark, imageWatermarkWidth, 0, imaging.Lanczos)
	composed := imaging.OverlayCenter(canvas, watermark, 1.0)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, composed, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	zap.L().Info("Image processing completed successfully")

	return &Result{
		Buffer:      buf.Bytes(),
		ContentType: "image/webp",
		Extension:   "webp",
		Status:      StatusClean,
	}, nil
}
