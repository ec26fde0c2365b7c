package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const freeImageURL = "https://freeimage.host/api/1/upload"

// FreeImage uploads to freeimage.host, used when no Cloudinary account is set up.
type FreeImage struct {
	apiKey string
	url    string
	http   *resty.Client
}

func NewFreeImage(apiKey string) *FreeImage {
	return &FreeImage{apiKey: apiKey, url: freeImageURL, http: resty.New().SetTimeout(60 * time.Second)}
}

type freeImageResponse struct {
	StatusCode int `json:"status_code"`
	Image      struct {
		URL string `json:"url"`
	} `json:"image"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (f *FreeImage) Upload(ctx context.Context, _ string, dataURI string) (string, error) {
	var resp freeImageResponse
	rr, err := f.http.R().SetContext(ctx).
		SetFormData(map[string]string{
			"key":    f.apiKey,
			"action": "upload",
			"source": base64Payload(dataURI),
			"format": "json",
		}).
		SetResult(&resp).SetError(&resp).
		Post(f.url)
	if err != nil {
		return "", fmt.Errorf("freeimage upload: %w", err)
	}
	if rr.IsError() {
		msg := rr.Status()
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		return "", fmt.Errorf("freeimage upload: %s", msg)
	}
	if resp.Image.URL == "" {
		return "", errors.New("freeimage upload: response has no image url")
	}
	return resp.Image.URL, nil
}
