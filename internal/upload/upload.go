package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ukm-ponja/internal/config"
)

var ErrNotConfigured = errors.New("image upload is not configured")

// Uploader stores an image given as a data URI and returns its durable URL.
type Uploader interface {
	Upload(ctx context.Context, name, dataURI string) (string, error)
}

// Disabled is used when no upload credentials are set. Every upload fails.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

// New picks the upload backend named by cfg.UploadProvider.
func New(cfg *config.Config) (Uploader, error) {
	switch config.UploadProvider(strings.ToLower(string(cfg.UploadProvider))) {
	case config.UploadCloudinary:
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return Disabled{}, ErrNotConfigured
		}
		return NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder), nil
	case config.UploadFreeImage:
		if cfg.FreeImageAPIKey == "" {
			return Disabled{}, ErrNotConfigured
		}
		return NewFreeImage(cfg.FreeImageAPIKey), nil
	default:
		return Disabled{}, fmt.Errorf("unknown upload provider: %s", cfg.UploadProvider)
	}
}

// base64Payload strips the "data:<mime>;base64," prefix if present.
func base64Payload(dataURI string) string {
	if !strings.HasPrefix(dataURI, "data:") {
		return dataURI
	}
	if i := strings.Index(dataURI, ","); i >= 0 {
		return dataURI[i+1:]
	}
	return dataURI
}
