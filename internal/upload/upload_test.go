package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ukm-ponja/internal/config"
)

func TestSign(t *testing.T) {
	// example from Cloudinary's signature documentation
	got := sign(map[string]string{"eager": "w_400,h_300,c_pad|w_260,h_200,c_crop", "public_id": "sample_image", "timestamp": "1315060510"}, "abcd")
	assert.Equal(t, "bfd09f95f331f558cbd1320e67aa8d488770583e", got)
}

func TestCloudinary_Upload(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/grafik.png"}`))
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "key", "secret", "ukm-ponja")
	c.baseURL = srv.URL
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	c.newID = func() string { return "1a2b3c4d" }

	url, err := c.Upload(context.Background(), "grafik", "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/grafik.png", url)
	assert.Equal(t, "data:image/png;base64,AAAA", form["file"])
	assert.Equal(t, "1700000000", form["timestamp"])
	assert.Equal(t, "ukm-ponja", form["folder"])
	assert.Equal(t, "grafik-1a2b3c4d", form["public_id"])
	assert.Equal(t, sign(map[string]string{"folder": "ukm-ponja", "public_id": "grafik-1a2b3c4d", "timestamp": "1700000000"}, "secret"), form["signature"])
}

func TestCloudinary_SameTitleNeverOverwrites(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		ids = append(ids, r.PostForm.Get("public_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/x.png"}`))
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "key", "secret", "")
	c.baseURL = srv.URL
	for i := 0; i < 2; i++ {
		_, err := c.Upload(context.Background(), "Target P2P Periode Jan/2025", "data:image/png;base64,AAAA")
		require.NoError(t, err)
	}
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	for _, id := range ids {
		assert.NotContains(t, id, "/")
		assert.True(t, strings.HasPrefix(id, "target-p2p-periode-jan-2025-"), id)
	}
}

func TestPublicID(t *testing.T) {
	assert.Equal(t, "target-ptm-periode-januari-2025-x1", publicID("Target PTM  Periode Januari 2025", "x1"))
	assert.Equal(t, "x1", publicID("", "x1"))
	assert.Equal(t, "x1", publicID("//", "x1"))
}

func TestCloudinary_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "key", "secret", "")
	c.baseURL = srv.URL
	_, err := c.Upload(context.Background(), "", "data:image/png;base64,AAAA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Signature")
}

func TestFreeImage_Upload(t *testing.T) {
	var source string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		source = r.PostForm.Get("source")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_code":200,"image":{"url":"https://iili.io/abc.png"}}`))
	}))
	defer srv.Close()

	f := NewFreeImage("key")
	f.url = srv.URL
	url, err := f.Upload(context.Background(), "x", "data:image/png;base64,QUJD")
	require.NoError(t, err)
	assert.Equal(t, "https://iili.io/abc.png", url)
	assert.Equal(t, "QUJD", source)
}

func TestFreeImage_EmptyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_code":200,"image":{}}`))
	}))
	defer srv.Close()

	f := NewFreeImage("key")
	f.url = srv.URL
	_, err := f.Upload(context.Background(), "x", "QUJD")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	u, err := New(&config.Config{UploadProvider: "cloudinary"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.IsType(t, Disabled{}, u)

	u, err = New(&config.Config{UploadProvider: "freeimage", FreeImageAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &FreeImage{}, u)

	_, err = Disabled{}.Upload(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
