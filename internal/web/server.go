// Package web serves the public chart endpoints and the admin API.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ukm-ponja/internal/auth"
	"ukm-ponja/internal/export"
	"ukm-ponja/internal/gallery"
	"ukm-ponja/internal/insight"
	"ukm-ponja/internal/metrics"
	"ukm-ponja/internal/render"
	"ukm-ponja/internal/revalidate"
	"ukm-ponja/internal/settings"
)

const maxBody = 1 << 20

// Exporter is implemented by *export.Pipeline.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
}

// Describer is implemented by *insight.Service.
type Describer interface {
	Describe(ctx context.Context, cfg settings.Config) (insight.Insight, error)
}

// Deps are the collaborators of the server. Exporter, Insight and Cache may be nil.
type Deps struct {
	Settings *settings.Service
	Gallery  gallery.Store
	Exporter Exporter
	Insight  Describer
	Admins   *auth.Service
	Tokens   *auth.TokenIssuer
	Renderer *render.Renderer
	Cache    *revalidate.Cache
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	// ExportTimeout bounds each admin export; zero means export.DefaultTimeout.
	ExportTimeout time.Duration
}

type Server struct {
	Deps
	server    *http.Server
	startTime time.Time
}

func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Renderer == nil {
		d.Renderer = render.NewRenderer()
	}
	return &Server{Deps: d, startTime: time.Now()}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// public
	mux.Handle("GET /api/chart", s.route("chart", s.handleChart))
	mux.Handle("GET /chart.png", s.route("chart_image", s.handleChartImage(render.FormatPNG)))
	mux.Handle("GET /chart.svg", s.route("chart_image", s.handleChartImage(render.FormatSVG)))
	mux.Handle("GET /api/gallery", s.route("gallery", s.handleGallery))
	mux.Handle("GET /api/status", s.route("status", s.handleStatus))
	mux.Handle("GET /metrics", s.Metrics.Handler())

	// admin
	mux.Handle("GET /api/admin/chart-config", s.route("admin_config", s.requireAdmin(s.handleGetConfig)))
	mux.Handle("PUT /api/admin/chart-config", s.route("admin_config", s.requireAdmin(s.handleSaveConfig)))
	mux.Handle("POST /api/admin/chart-preview", s.route("admin_preview", s.requireAdmin(s.handlePreview)))
	mux.Handle("POST /api/admin/chart-export", s.route("admin_export", s.requireAdmin(s.handleExport)))
	mux.Handle("POST /api/admin/chart-insight", s.route("admin_insight", s.requireAdmin(s.handleInsight)))
	return mux
}

func (s *Server) Start(addr string) error {
	exportTimeout := s.ExportTimeout
	if exportTimeout <= 0 {
		exportTimeout = export.DefaultTimeout
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: exportTimeout + 15*time.Second, // admin export answers after its own deadline
		IdleTimeout:  60 * time.Second,
	}
	s.Log.Info("starting web server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// route counts requests per route and status code.
func (s *Server) route(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		s.Metrics.ObserveRequest(name, rec.code)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
