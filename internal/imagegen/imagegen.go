package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
)

// ErrNoImageData is returned when the service answers without an image.
var ErrNoImageData = errors.New("image generation returned no data")

type Image struct {
	Data     []byte
	MIMEType string
	Model    string
}

// DataURI encodes the image as a data: URI, the form handed to uploaders and browsers.
func (i Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Generator produces one image per call. Implementations do not retry.
type Generator interface {
	GenerateImage(ctx context.Context, prompt string) (Image, error)
}
