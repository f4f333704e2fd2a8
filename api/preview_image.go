package api

import (
	"errors"
	"io"
	"net/http"

	"previewkit/preview-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PreviewImage creates an image preview, rejecting anything that isn't
// an image before the original is stored
func (a *API) PreviewImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		zap.L().Warn("No file uploaded")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "No file uploaded",
		})
		return
	}

	code, mime, err := validators.FileValidator(fh, "image")
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err))
			err = errors.New("Internal server error")
		} else {
			zap.L().Warn("Unsupported file type - expected image", zap.String("mimetype", mime))
		}

		c.AbortWithStatusJSON(code, gin.H{
			"message": err.Error(),
		})
		return
	}

	zap.L().Info("Processing image", zap.String("filename", fh.Filename), zap.String("mimetype", mime))

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

	res, err := a.Images.Build(buf, nil)
	if err != nil {
		zap.L().Error("Error processing image", zap.Error(err))
		a.recordFailure(fileID, err.Error())

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message":     "Error processing image",
			"fileId":      fileID,
			"originalUrl": originalURL,
			"error":       err.Error(),
			"canRetry":    true,
		})
		return
	}

	a.finish(c, fileID, originalURL, fh.Filename, res)
}
