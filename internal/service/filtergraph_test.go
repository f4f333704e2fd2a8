package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterGraphCompile(t *testing.T) {
	g := FilterGraph{
		{
			Filter:  "scale",
			Options: "288:-1",
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

	assert.Equal(t,
		"[1:v]scale=288:-1[watermark];[0:v][watermark]overlay=(main_w-overlay_w)/2:(main_h-overlay_h)/2[out]",
		g.Compile())
}

func TestFilterGraphCompileNoOptions(t *testing.T) {
	g := FilterGraph{
		{Filter: "hflip", Inputs: []string{"0:v"}, Outputs: []string{"out"}},
	}

	assert.Equal(t, "[0:v]hflip[out]", g.Compile())
}

func TestOverlayGraph(t *testing.T) {
	g := OverlayGraph(96)

	compiled := g.Compile()
	assert.Contains(t, compiled, "scale=96:-1")
	assert.Contains(t, compiled, "overlay=(main_w-overlay_w)/2:(main_h-overlay_h)/2")
	assert.Contains(t, compiled, "[out]")
}
