package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"previewkit/preview-api/validators"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Fraction of the source video width the watermark is scaled to. The
// image path uses a fixed pixel width instead
const videoWatermarkScale = 0.15

// ErrEmptyVideoBuffer is the only input the video builder rejects
// outright instead of degrading
var ErrEmptyVideoBuffer = errors.New("invalid input video buffer")

// VideoTranscoder is what the video builder needs from the ffmpeg
// wrapper. Narrowed to an interface so the fallback ladder can be tested
// without the real binary.
type VideoTranscoder interface {
	Available() bool
	Run(ctx context.Context, args []string) error
	Probe(ctx context.Context, p string) (*VideoMetadata, error)
}

// VideoBuilder overlays the watermark onto uploaded videos. Its contract
// is availability over fidelity: apart from an empty input buffer and
// local disk failures, every internal failure turns into a degraded
// success that returns the original bytes with an explanatory note,
// never an HTTP-level error.
type VideoBuilder struct {
	transcoder       VideoTranscoder
	watermarkPath    string
	preset           string
	videoBitrateKbps int
	audioBitrateKbps int

	// StrictProbe turns a metadata-probe failure into a hard failure
	// instead of substituting 1920x1080 defaults
	StrictProbe bool
}

func NewVideoBuilder(t VideoTranscoder) *VideoBuilder {
	return &VideoBuilder{
		transcoder:       t,
		watermarkPath:    viper.GetString("paths.watermark"),
		preset:           viper.GetString("processing.video_preset"),
		videoBitrateKbps: viper.GetInt("processing.video_bitrate_kbps"),
		audioBitrateKbps: viper.GetInt("processing.audio_bitrate_kbps"),
		StrictProbe:      viper.GetBool("processing.strict_probe"),
	}
}

func (b *VideoBuilder) Build(ctx context.Context, original []byte, opts *validators.ProcessingOptions) (*Result, error) {
	zap.L().Debug("Processing video preview")

	if len(original) == 0 {
		return nil, ErrEmptyVideoBuffer
	}

	if !b.transcoder.Available() {
		zap.L().Info("FFmpeg not available. Unable to apply watermark to video.")
		return b.degraded(original,
			"Original video returned without watermark - ffmpeg not available. Please install ffmpeg to enable video watermarking.",
			true), nil
	}

	if _, err := os.Stat(b.watermarkPath); err != nil {
		zap.L().Error("Watermark file not found", zap.String("path", b.watermarkPath))
		return b.degraded(original,
			"Original video returned without watermark - watermark file not found",
			true), nil
	}

	// Temp files are uniquely named per request so concurrent uploads
	// can't collide, and removed on every exit path
	id := uuid.NewString()
	inPath := filepath.Join(os.TempDir(), "preview-in-"+id+".mp4")
	outPath := filepath.Join(os.TempDir(), "preview-out-"+id+".mp4")
	defer cleanupTempFiles(inPath, outPath)

	if err := os.WriteFile(inPath, original, 0600); err != nil {
		return nil, fmt.Errorf("failed to stage input video: %w", err)
	}

	meta, err := b.transcoder.Probe(ctx, inPath)
	if err != nil {
		if b.StrictProbe {
			return nil, fmt.Errorf("failed to process video: %w", err)
		}

		zap.L().Info("Failed to get video metadata. Using default watermark size.", zap.Error(err))
		meta = &VideoMetadata{Width: 1920, Height: 1080, Duration: 0}
	}

	watermarkWidth := int(math.Round(float64(meta.Width) * videoWatermarkScale))

	zap.L().Debug("Video dimensions and watermark size",
		zap.Int("video_width", meta.Width),
		zap.Int("video_height", meta.Height),
		zap.Int("watermark_width", watermarkWidth))

	videoBitrate := b.videoBitrateKbps
	if opts != nil && opts.Quality > 0 {
		videoBitrate = opts.Quality
	}

	args := []string{
		"-y",
		"-i", inPath,
		"-i", b.watermarkPath,
		"-filter_complex", OverlayGraph(watermarkWidth).Compile(),
		"-map", "[out]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-preset", b.preset,
		"-b:v", fmt.Sprintf("%dk", videoBitrate),
		"-b:a", fmt.Sprintf("%dk", b.audioBitrateKbps),
		"-movflags", "+faststart",
		"-pix_fmt", "yuv420p",
		"-f", "mp4",
		outPath,
	}

	if err := b.transcoder.Run(ctx, args); err != nil {
		zap.L().Error("Error processing video with ffmpeg", zap.Error(err))
		zap.L().Info("Returning original video due to processing error")
		return b.degraded(original,
			"Original video returned without watermark - ffmpeg processing error: "+err.Error(),
			false), nil
	}

	output, err := os.ReadFile(outPath)
	if err != nil {
		zap.L().Error("Failed to read transcoded output", zap.Error(err))
		return b.degraded(original,
			"Original video returned without watermark - ffmpeg processing error: "+err.Error(),
			false), nil
	}

	zap.L().Info("Video processing completed successfully")

	return &Result{
		Buffer:      output,
		ContentType: "video/mp4",
		Extension:   "mp4",
		Status:      StatusClean,
	}, nil
}

// degraded wraps the unmodified original into a success result. The
// placeholder thumbnail is only synthesized for the pre-transcode
// states, and only best-effort: a synthesis failure keeps the note
// and drops the thumbnail.
func (b *VideoBuilder) degraded(original []byte, note string, withThumbnail bool) *Result {
	r := &Result{
		Buffer:         original,
		ContentType:    "video/mp4",
		Extension:      "mp4",
		Status:         StatusDegraded,
		ProcessingNote: note,
	}

	if withThumbnail {
		thumb, err := PlaceholderThumbnail(b.watermarkPath, "Preview unavailable")
		if err != nil {
			zap.L().Warn("Failed to synthesize placeholder thumbnail", zap.Error(err))
		} else {
			r.Thumbnail = thumb
		}
	}

	return r
}

func cleanupTempFiles(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			zap.L().Info("Failed to clean up temp file", zap.String("path", p), zap.Error(err))
		}
	}
}
