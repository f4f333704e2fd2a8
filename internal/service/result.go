// Package service contains the preview builders and the ffmpeg
// capability wrapper they delegate to
package service

// ResultStatus tags a builder outcome. Hard failures are ordinary
// errors, so only the two success shapes are represented here.
type ResultStatus string

const (
	// StatusClean means the media was watermarked and re-encoded as requested
	StatusClean ResultStatus = "clean"
	// StatusDegraded means the unmodified original was returned with a note
	// explaining why watermarking couldn't be performed
	StatusDegraded ResultStatus = "degraded"
)

// Result is the output of a preview builder
type Result struct {
	Buffer      []byte
	ContentType string
	// Extension is lowercase without the leading dot
	Extension string
	Status    ResultStatus

	// ProcessingNote is only set on degraded results
	ProcessingNote string
	// Thumbnail is a base64 still image substituted when the video itself
	// couldn't be watermarked. Empty when not applicable
	Thumbnail string
}

// Degraded reports whether the builder fell back to the original media
func (r *Result) Degraded() bool {
	return r.Status == StatusDegraded
}

// VideoMetadata holds the probed stream properties of a video
type VideoMetadata struct {
	Width  int
	Height int
	// Duration is in seconds, 0 if unknown
	Duration float64
}
