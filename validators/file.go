package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile          = errors.New("No file uploaded")
	ErrFileNameTooLong = errors.New("File name is too long")
	ErrNotImage        = errors.New("Unsupported file type - expected image")
	ErrNotVideo        = errors.New("Unsupported file type - expected video")
)

const maxFileNameSize = 255

// FileValidator checks the uploaded file header and returns the effective
// MIME type used for dispatching. The declared Content-Type is trusted
// first since it's faster for legit clients; when it's missing or generic
// the actual content is sniffed instead. expect narrows the accepted
// family to "image" or "video" for the typed endpoints, an empty string
// accepts anything.
func FileValidator(fh *multipart.FileHeader, expect string) (code int, mime string, err error) {
	if fh == nil {
		return http.StatusBadRequest, "", ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, "", ErrFileNameTooLong
	}

	mime = fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		f, err := fh.Open()
		if err != nil {
			return http.StatusInternalServerError, "", err
		}
		defer f.Close()

		detected, err := mimetype.DetectReader(f)
		if err != nil {
			return http.StatusInternalServerError, "", err
		}

		mime = detected.String()
	}

	switch expect {
	case "image":
		if !strings.HasPrefix(mime, "image/") {
			return http.StatusBadRequest, "", ErrNotImage
		}
	case "video":
		if !strings.HasPrefix(mime, "video/") {
			return http.StatusBadRequest, "", ErrNotVideo
		}
	}

	return 0, mime, nil
}
