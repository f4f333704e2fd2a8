package api

import (
	"errors"
	"io"
	"net/http"

	"previewkit/preview-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PreviewVideo creates a video preview, rejecting anything that isn't a
// video before the original is stored. The builder itself never fails
// on transcoder trouble, it degrades to the original instead.
func (a *API) PreviewVideo(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		zap.L().Warn("No file uploaded")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "No file uploaded",
		})
		return
	}

	code, mime, err := validators.FileValidator(fh, "video")
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err))
			err = errors.New("Internal server error")
		} else {
			zap.L().Warn("Unsupported file type - expected video", zap.String("mimetype", mime))
		}

		c.AbortWithStatusJSON(code, gin.H{
			"message": err.Error(),
		})
		return
	}

	zap.L().Info("Processing video", zap.String("filename", fh.Filename), zap.String("mimetype", mime))

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

	fileID, originalURL, err := a.Store.StoreOriginal(c.Request.Context(), buf, fh.Filename, mime)
	if err != nil {
		zap.L().Error("Error storing original file", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}

	a.recordUpload(fileID, fh.Filename, mime, fh.Size)

	res, err := a.Videos.Build(c.Request.Context(), buf, nil)
	if err != nil {
		zap.L().Error("Error processing video", zap.Error(err))
		a.recordFailure(fileID, err.Error())

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message":     "Error processing video",
			"fileId":      fileID,
			"originalUrl": originalURL,
			"error":       err.Error(),
			"canRetry":    true,
		})
		return
	}

	a.finish(c, fileID, originalURL, fh.Filename, res)
}
