// Package api contains all endpoints available
package api

import (
	"context"
	"fmt"
	"time"

	"previewkit/preview-api/db"
	"previewkit/preview-api/internal/service"
	"previewkit/preview-api/internal/storage"
	"previewkit/preview-api/pkg/middleware"
	"previewkit/preview-api/validators"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// ImageBuilder produces a watermarked preview from an image upload
type ImageBuilder interface {
	Build(original []byte, opts *validators.ProcessingOptions) (*service.Result, error)
}

// VideoBuilder produces a watermarked preview from a video upload,
// degrading to the original when it can't
type VideoBuilder interface {
	Build(ctx context.Context, original []byte, opts *validators.ProcessingOptions) (*service.Result, error)
}

// ObjectStore is the slice of the storage client the handlers use
type ObjectStore interface {
	StorePreview(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error)
	StoreOriginal(ctx context.Context, buf []byte, filename, mimetype string) (fileID, url string, err error)
	FetchOriginal(ctx context.Context, fileID string) (*storage.OriginalFile, error)
	OriginalURL(ctx context.Context, fileID, ext string) (string, error)
}

type API struct {
	Router *gin.Engine
	DB     *gorm.DB
	Store  ObjectStore
	Images ImageBuilder
	Videos VideoBuilder
}

func NewRouter() (*API, error) {
	makeLogger()

	a := &API{}

	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite database, %w", err)
	}
	a.DB = database

	store, err := storage.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client, %w", err)
	}
	a.Store = store

	transcoder := service.NewTranscoder()
	a.Images = service.NewImageBuilder()
	a.Videos = service.NewVideoBuilder(transcoder)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 5 << 20

	maxUploadSize := viper.GetInt64("upload.max_size")
	uploadLimit := middleware.BodySizeLimiter(maxUploadSize)

	// HEAD /heartbeat		-> Used to check if the server is alive
	router.HEAD("/heartbeat", a.Heartbeat)

	// POST /createPreview		-> Legacy endpoint, dispatches on the declared media type
	router.POST("/createPreview", uploadLimit, a.PreviewCreate)

	// POST /image			-> Creates an image preview, rejects non-images
	router.POST("/image", uploadLimit, a.PreviewImage)

	// POST /video			-> Creates a video preview, rejects non-videos
	router.POST("/video", uploadLimit, a.PreviewVideo)

	// POST /retry			-> Re-runs processing for a stored original
	router.POST("/retry", middleware.BodySizeLimiter(1<<20), a.PreviewRetry)

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	switch viper.GetString("app.log_level") {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case "fatal":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.FatalLevel)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
