package service

import (
	"fmt"
	"strings"
)

// FilterStage is a single node of an ffmpeg filter graph. Keeping the
// graph as data lets the overlay pipeline be tested without running
// the actual transcoder.
type FilterStage struct {
	Filter  string
	Options string
	Inputs  []string
	Outputs []string
}

type FilterGraph []FilterStage

// Compile renders the graph into the string accepted by -filter_complex
func (g FilterGraph) Compile() string {
	stages := make([]string, 0, len(g))

	for _, s := range g {
		var b strings.Builder

		for _, in := range s.Inputs {
			b.WriteString("[" + in + "]")
		}

		b.WriteString(s.Filter)
		if s.Options != "" {
			b.WriteString("=" + s.Options)
		}

		for _, out := range s.Outputs {
			b.WriteString("[" + out + "]")
		}

		stages = append(stages, b.String())
	}

	return strings.Join(stages, ";")
}

// OverlayGraph builds the watermarking pipeline: scale the watermark
// input to the given width (height follows proportionally), then overlay
// it centered onto the main video stream.
func OverlayGraph(watermarkWidth int) FilterGraph {
	return FilterGraph{
		{
			Filter:  "scale",
			Options: fmt.Sprintf("%d:-1", watermarkWidth),
			Inputs:  []string{"1:v"},
			Outputs: []string{"watermark"},
		},
		{
			Filter:  "overlay",
			Options: "(main_w-overlay_w)/2:(main_h-overlay_h)/2",
			Inputs:  []string{"0:v", "watermark"},
			Outputs: []string{"out"},
		},
	}
}
