package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Transcoder wraps the ffmpeg and ffprobe binaries. Availability is
// determined once at construction and never changes afterwards, so the
// value can be shared between requests without locking.
type Transcoder struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	available   bool
	version     string
}

// NewTranscoder probes for the ffmpeg binary by running a version query.
// A missing or broken binary is an ordinary condition, not an error: the
// video builder falls back to returning originals unmodified.
func NewTranscoder() *Transcoder {
	t := &Transcoder{
		ffmpegPath:  viper.GetString("ffmpeg.path"),
		ffprobePath: viper.GetString("ffmpeg.ffprobe_path"),
		timeout:     viper.GetDuration("ffmpeg.timeout"),
	}
	if t.ffmpegPath == "" {
		t.ffmpegPath = "ffmpeg"
	}
	if t.ffprobePath == "" {
		t.ffprobePath = "ffprobe"
	}

	out, err := exec.Command(t.ffmpegPath, "-version").Output()
	if err != nil {
		zap.L().Info("FFmpeg not found or not properly configured. Video watermarking will not be available. Please install ffmpeg to enable video watermarking.",
			zap.Error(err))
		zap.L().Info("Installation instructions:\n" +
			"- macOS: brew install ffmpeg\n" +
			"- Ubuntu/Debian: sudo apt update && sudo apt install ffmpeg\n" +
			"- Windows: Download from https://ffmpeg.org/download.html and add to PATH")
		return t
	}

	t.available = true
	t.version, _, _ = strings.Cut(string(out), "\n")

	zap.L().Info("FFmpeg is available", zap.String("version", t.version))
	return t
}

// Available reports whether the ffmpeg binary was usable at startup
func (t *Transcoder) Available() bool {
	return t.available
}

// Version returns the first line of `ffmpeg -version`, empty when unavailable
func (t *Transcoder) Version() string {
	return t.version
}

// Run executes ffmpeg with the given arguments under the configured
// bounding timeout so a hung encoder can't block a request forever
func (t *Transcoder) Run(ctx context.Context, args []string) error {
	if !t.available {
		return fmt.Errorf("ffmpeg not available")
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)

	zap.L().Debug("Running FFmpeg command", zap.String("cmd", cmd.String()))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg timed out: %w", ctx.Err())
		}

		zap.L().Error("FFmpeg failed", zap.Error(err), zap.String("stderr", stderr.String()))
		return fmt.Errorf("ffmpeg failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	return nil
}
