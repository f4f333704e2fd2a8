package api

import (
	"errors"
	"io"
	"net/http"

	"previewkit/preview-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PreviewCreate is the legacy endpoint: it accepts any upload and
// dispatches on the declared media type. The original is retained
// before the type check, so even an unsupported-type rejection carries
// a fileId.
func (a *API) PreviewCreate(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		zap.L().Warn("No file uploaded")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "No file uploaded",
		})
		return
	}

	code, mime, err := validators.FileValidator(fh, "")
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err))
			err = errors.New("Internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"message": err.Error(),
		})
		return
	}

	zap.L().Info("Processing file", zap.String("filename", fh.Filename), zap.String("mimetype", mime))

	f, err := fh.Open()
	if err != nil {
		zap.L().Error("Failed to open multipart file", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		zap.L().Error("Failed to read multipart file", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}

	// Retention happens unconditionally before dispatch so every
	// processing attempt can be retried
	fileID, originalURL, err := a.Store.StoreOriginal(c.Request.Context(), buf, fh.Filename, mime)
	if err != nil {
		zap.L().Error("Error storing original file", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}

	a.recordUpload(fileID, fh.Filename, mime, fh.Size)

	res, err := a.dispatch(c.Request.Context(), mime, buf, nil)
	if err != nil {
		if errors.Is(err, errUnsupportedType) {
			zap.L().Warn("Unsupported file type", zap.String("mimetype", mime))
			a.recordFailure(fileID, err.Error())

			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message": "Unsupported file type",
				"fileId":  fileID,
			})
			return
		}

		zap.L().Error("Error processing file", zap.Error(err))
		a.recordFailure(fileID, err.Error())

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message":     "Error processing file",
			"fileId":      fileID,
			"originalUrl": originalURL,
			"error":       err.Error(),
			"canRetry":    true,
		})
		return
	}

	a.finish(c, fileID, originalURL, fh.Filename, res)
}
