package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

type ffprobeOutput struct {
	Streams []struct {
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Duration string `json:"duration"`
	} `json:"streams"`
}

// Probe asks ffprobe for the dimensions and duration of the first video
// stream. It never substitutes defaults on its own: callers decide
// whether a probe failure is fatal.
func (t *Transcoder) Probe(ctx context.Context, p string) (*VideoMetadata, error) {
	if !t.available {
		return nil, errors.New("ffmpeg not available")
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	zap.L().Debug("Running FFprobe to determine video dimensions")

	cmd := exec.CommandContext(ctx, t.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,duration",
		"-of", "json",
		"-i", p,
	)

	var stdOut, stdErr bytes.Buffer
	cmd.Stdout = &stdOut
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to get video metadata: %w (%s)", err, strings.TrimSpace(stdErr.String()))
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdOut.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(out.Streams) == 0 {
		return nil, errors.New("no video stream found")
	}

	s := out.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return nil, errors.New("video stream reports no dimensions")
	}

	// Some containers don't carry a per-stream duration. That's fine,
	// the builders only need it for diagnostics
	duration, _ := strconv.ParseFloat(s.Duration, 64)

	return &VideoMetadata{
		Width:    s.Width,
		Height:   s.Height,
		Duration: duration,
	}, nil
}
