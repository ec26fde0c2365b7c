package imagegen

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ukm-ponja/internal/config"
)

func jsonServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImage_DataURI(t *testing.T) {
	img := Image{Data: []byte("PNGDATA")}
	assert.Equal(t, "data:image/png;base64,UE5HREFUQQ==", img.DataURI())

	img.MIMEType = "image/jpeg"
	assert.True(t, strings.HasPrefix(img.DataURI(), "data:image/jpeg;base64,"))
}

func TestOpenAI_GenerateImage(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte("PNGDATA"))
	srv := jsonServer(t, `{"created":1,"data":[{"b64_json":"`+b64+`"}]}`)

	img, err := NewOpenAI("key", srv.URL+"/v1", "").GenerateImage(context.Background(), "draw")
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGDATA"), img.Data)
	assert.Equal(t, "dall-e-3", img.Model)
}

func TestOpenAI_NoData(t *testing.T) {
	srv := jsonServer(t, `{"created":1,"data":[]}`)
	_, err := NewOpenAI("key", srv.URL+"/v1", "").GenerateImage(context.Background(), "draw")
	assert.ErrorIs(t, err, ErrNoImageData)
}

func TestGemini_GenerateImage(t *testing.T) {
	srv := jsonServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Berikut grafiknya"},{"inlineData":{"mimeType":"image/png","data":"UE5HREFUQQ=="}}]}}]}`)

	g, err := NewGemini(context.Background(), "key", "", srv.URL)
	require.NoError(t, err)
	img, err := g.GenerateImage(context.Background(), "draw")
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGDATA"), img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, DefaultGeminiModel, img.Model)
}

func TestGemini_TextOnlyAnswer(t *testing.T) {
	srv := jsonServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"text":"maaf"}]}}]}`)

	g, err := NewGemini(context.Background(), "key", "m", srv.URL)
	require.NoError(t, err)
	_, err = g.GenerateImage(context.Background(), "draw")
	assert.ErrorIs(t, err, ErrNoImageData)
}

func TestNew_Factory(t *testing.T) {
	_, err := New(context.Background(), &config.Config{ImageProvider: "openai"})
	assert.Error(t, err)

	gen, err := New(context.Background(), &config.Config{ImageProvider: "openai", OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, gen)

	_, err = New(context.Background(), &config.Config{ImageProvider: "gemini"})
	assert.Error(t, err, "gemini needs a key")

	_, err = New(context.Background(), &config.Config{ImageProvider: "paint"})
	assert.Error(t, err)
}
