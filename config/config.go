// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")

	v.BindEnv("storage.access_key", "storage_access_key")
	v.BindEnv("storage.secret_key", "storage_secret_key")
	v.BindEnv("storage.region", "storage_region")
	v.BindEnv("storage.endpoint", "storage_endpoint")
	v.BindEnv("storage.public_bucket", "storage_public_bucket")
	v.BindEnv("storage.private_bucket", "storage_private_bucket")

	v.BindEnv("ffmpeg.path", "ffmpeg_path")
	v.BindEnv("ffmpeg.ffprobe_path", "ffprobe_path")
	v.BindEnv("ffmpeg.timeout", "ffmpeg_timeout")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("paths.watermark", "watermark_path")

	v.BindEnv("processing.strict_probe", "processing_strict_probe")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)

	v.SetDefault("storage.region", "us-central-1")
	v.SetDefault("storage.endpoint", "https://s3.us-central-1.wasabisys.com")

	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.ffprobe_path", "ffprobe")
	v.SetDefault("ffmpeg.timeout", "5m")

	// Megabytes, converted to bytes at the end
	v.SetDefault("upload.max_size", 50)

	v.SetDefault("paths.watermark", "public/watermark.png")

	v.SetDefault("processing.image_quality", 80)
	v.SetDefault("processing.image_width", 1920)
	v.SetDefault("processing.image_height", 1080)
	v.SetDefault("processing.video_preset", "veryfast")
	v.SetDefault("processing.video_bitrate_kbps", 500)
	v.SetDefault("processing.audio_bitrate_kbps", 64)
	v.SetDefault("processing.strict_probe", false)

	if err := v.ReadInConfig(); err != nil {
		// The config file itself is optional since everything
		// required can come from the environment
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetString("storage.access_key") == "" {
		return errors.New("storage access key can't be empty")
	}

	if v.GetString("storage.secret_key") == "" {
		return errors.New("storage secret key can't be empty")
	}

	if v.GetString("storage.public_bucket") == "" {
		return errors.New("public bucket can't be empty")
	}

	if v.GetString("storage.private_bucket") == "" {
		return errors.New("private bucket can't be empty")
	}

	if q := v.GetInt("processing.image_quality"); q <= 0 || q > 100 {
		return errors.New("processing.image_quality must be between 1 and 100")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
