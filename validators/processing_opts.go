// Package validators holds the request-level validation logic shared
// by the upload and retry endpoints
package validators

import (
	"errors"
	"net/http"
)

// ProcessingOptions are the optional per-request overrides for the
// preview builders. Zero values mean "use the configured default".
// Quality is the WebP quality (1-100) for images and the video bitrate
// in kbps for videos. Width and Height only apply to images.
type ProcessingOptions struct {
	Quality int `json:"quality" form:"quality"`
	Width   int `json:"width" form:"width"`
	Height  int `json:"height" form:"height"`
}

func ProcessingOptsValidator(o *ProcessingOptions) (code int, err error) {
	if o == nil {
		return 0, nil
	}

	if o.Quality < 0 {
		return http.StatusBadRequest, errors.New("quality must be a positive number")
	}

	if o.Width < 0 || o.Height < 0 {
		return http.StatusBadRequest, errors.New("width and height must be positive numbers")
	}

	return 0, nil
}
