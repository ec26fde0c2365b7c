package upload

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const cloudinaryBaseURL = "https://api.cloudinary.com/v1_1"

// Cloudinary uses the signed upload API.
type Cloudinary struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	baseURL   string
	now       func() time.Time
	newID     func() string
	http      *resty.Client
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) *Cloudinary {
	return &Cloudinary{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
		baseURL:   cloudinaryBaseURL,
		now:       time.Now,
		newID:     func() string { return uuid.NewString()[:8] },
		http:      resty.New().SetTimeout(60 * time.Second),
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Cloudinary) Upload(ctx context.Context, name, dataURI string) (string, error) {
	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	if c.folder != "" {
		params["folder"] = c.folder
	}
	params["public_id"] = publicID(name, c.newID())
	form := map[string]string{
		"file":      dataURI,
		"api_key":   c.apiKey,
		"signature": sign(params, c.apiSecret),
	}
	for k, v := range params {
		form[k] = v
	}

	var resp cloudinaryResponse
	url := strings.TrimRight(c.baseURL, "/") + "/" + c.cloudName + "/image/upload"
	rr, err := c.http.R().SetContext(ctx).SetFormData(form).SetResult(&resp).SetError(&resp).Post(url)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if rr.IsError() {
		msg := rr.Status()
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		return "", fmt.Errorf("cloudinary upload: %s", msg)
	}
	if resp.SecureURL == "" {
		return "", errors.New("cloudinary upload: response has no secure_url")
	}
	return resp.SecureURL, nil
}

// publicID makes a unique asset id so an upload never replaces an earlier one.
// The name is reduced to a slug: a '/' would otherwise open a subfolder.
func publicID(name, suffix string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}

// sign follows Cloudinary's scheme: sorted key=value pairs joined by '&',
// secret appended, SHA-1 hex digest.
func sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
