package api

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"previewkit/preview-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type retryRequest struct {
	FileID  string                        `json:"fileId"`
	Options *validators.ProcessingOptions `json:"options"`
}

// PreviewRetry re-runs processing for a previously retained original,
// optionally with adjusted options. Retry is always explicit and
// user-invoked, nothing here retries automatically.
func (a *API) PreviewRetry(c *gin.Context) {
	var req retryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FileID == "" {
		zap.L().Warn("No fileId provided")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "No fileId provided",
		})
		return
	}

	if code, err := validators.ProcessingOptsValidator(req.Options); err != nil {
		c.AbortWithStatusJSON(code, gin.H{
			"message": err.Error(),
		})
		return
	}

	zap.L().Info("Retrying file processing", zap.String("file_id", req.FileID))

	original, err := a.Store.FetchOriginal(c.Request.Context(), req.FileID)
	if err != nil {
		zap.L().Error("Error retrying file processing", zap.String("file_id", req.FileID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message":  "Error retrying file processing",
			"fileId":   req.FileID,
			"error":    err.Error(),
			"canRetry": true,
		})
		return
	}

	ext := strings.TrimPrefix(path.Ext(original.Filename), ".")

	originalURL, err := a.Store.OriginalURL(c.Request.Context(), req.FileID, ext)
	if err != nil {
		zap.L().Warn("Failed to sign original URL", zap.String("file_id", req.FileID), zap.Error(err))
		originalURL = ""
	}

	a.recordRetry(req.FileID)

	res, err := a.dispatch(c.Request.Context(), original.Mimetype, original.Buffer, req.Options)
	if err != nil {
		if errors.Is(err, errUnsupportedType) {
			zap.L().Warn("Unsupported file type for retry", zap.String("mimetype", original.Mimetype))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message": "Unsupported file type for retry",
			})
			return
		}

		zap.L().Error("Error retrying file processing", zap.String("file_id", req.FileID), zap.Error(err))
		a.recordFailure(req.FileID, err.Error())

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message":  "Error retrying file processing",
			"fileId":   req.FileID,
			"error":    err.Error(),
			"canRetry": true,
		})
		return
	}

	a.finish(c, req.FileID, originalURL, original.Filename, res)
}
