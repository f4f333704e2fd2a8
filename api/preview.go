package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"previewkit/preview-api/internal/model"
	"previewkit/preview-api/internal/service"
	"previewkit/preview-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errUnsupportedType = errors.New("Unsupported file type")

// previewResponse is the success body shared by all preview endpoints
type previewResponse struct {
	URL            string `json:"url"`
	OriginalURL    string `json:"originalUrl,omitempty"`
	FileID         string `json:"fileId"`
	ThumbnailData  string `json:"thumbnailData,omitempty"`
	ProcessingNote string `json:"processingNote,omitempty"`
}

// dispatch routes a buffer to the right builder by the declared MIME
// type prefix
func (a *API) dispatch(ctx context.Context, mime string, buf []byte, opts *validators.ProcessingOptions) (*service.Result, error) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return a.Images.Build(buf, opts)
	case strings.HasPrefix(mime, "video/"):
		return a.Videos.Build(ctx, buf, opts)
	default:
		return nil, errUnsupportedType
	}
}

// finish uploads the processed preview and writes the success response.
// The preview key carries a timestamp plus the original name stem so
// repeated uploads of the same file never collide.
func (a *API) finish(c *gin.Context, fileID, originalURL, filename string, res *service.Result) {
	stem := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	key := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), stem, res.Extension)

	url, err := a.Store.StorePreview(c.Request.Context(), key, res.Buffer, res.ContentType, map[string]string{
		"file-id":       fileID,
		"original-name": filename,
	})
	if err != nil {
		zap.L().Error("Failed to upload preview", zap.String("file_id", fileID), zap.Error(err))
		a.recordFailure(fileID, err.Error())

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
		})
		return
	}

	a.recordCompleted(fileID, key)

	c.JSON(http.StatusOK, previewResponse{
		URL:            url,
		OriginalURL:    originalURL,
		FileID:         fileID,
		ThumbnailData:  res.Thumbnail,
		ProcessingNote: res.ProcessingNote,
	})
}

// Upload records are diagnostics, not a source of truth: every write is
// best-effort and a failing database never fails a request

func (a *API) recordUpload(fileID, name, mimetype string, size int64) {
	if a.DB == nil {
		return
	}

	now := time.Now().UnixMilli()
	err := a.DB.Create(&model.Upload{
		FileID:       fileID,
		OriginalName: name,
		Mimetype:     mimetype,
		Size:         size,
		Status:       model.UploadStatusProcessing,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error
	if err != nil {
		zap.L().Warn("Failed to record upload", zap.String("file_id", fileID), zap.Error(err))
	}
}

func (a *API) recordCompleted(fileID, previewKey string) {
	if a.DB == nil {
		return
	}

	err := a.DB.Model(model.Upload{}).Where("file_id = ?", fileID).Updates(map[string]any{
		"status":      model.UploadStatusCompleted,
		"preview_key": previewKey,
		"updated_at":  time.Now().UnixMilli(),
	}).Error
	if err != nil {
		zap.L().Warn("Failed to record completion", zap.String("file_id", fileID), zap.Error(err))
	}
}

func (a *API) recordFailure(fileID, msg string) {
	if a.DB == nil {
		return
	}

	err := a.DB.Model(model.Upload{}).Where("file_id = ?", fileID).Updates(map[string]any{
		"status":        model.UploadStatusFailed,
		"error_message": msg,
		"updated_at":    time.Now().UnixMilli(),
	}).Error
	if err != nil {
		zap.L().Warn("Failed to record failure", zap.String("file_id", fileID), zap.Error(err))
	}
}

func (a *API) recordRetry(fileID string) {
	if a.DB == nil {
		return
	}

	err := a.DB.Model(model.Upload{}).Where("file_id = ?", fileID).Updates(map[string]any{
		"status":     model.UploadStatusProcessing,
		"retries":    gorm.Expr("retries + 1"),
		"updated_at": time.Now().UnixMilli(),
	}).Error
	if err != nil {
		zap.L().Warn("Failed to record retry", zap.String("file_id", fileID), zap.Error(err))
	}
}
