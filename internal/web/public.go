package web

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"ukm-ponja/internal/chart"
	"ukm-ponja/internal/gallery"
	"ukm-ponja/internal/render"
	"ukm-ponja/internal/revalidate"
	"ukm-ponja/internal/settings"
)

const defaultGalleryLimit = 50

type chartResponse struct {
	Title          string              `json:"title"`
	ProgramService string              `json:"programService,omitempty"`
	PersonInCharge string              `json:"personInCharge,omitempty"`
	Period         string              `json:"period,omitempty"`
	Fallback       bool                `json:"fallback"`
	Layout         render.Layout       `json:"layout"`
	Skipped        []chart.SkippedLine `json:"skipped,omitempty"`
}

func chartView(cfg settings.Config, fallback bool) chartResponse {
	parsed := chart.ParseDetailed(cfg.TargetData)
	title := chart.Title(cfg.ProgramService, cfg.Period)
	return chartResponse{
		Title:          title,
		ProgramService: cfg.ProgramService,
		PersonInCharge: cfg.PersonInCharge,
		Period:         cfg.Period,
		Fallback:       fallback,
		Layout:         render.NewLayout(title, parsed.Records),
		Skipped:        parsed.Skipped,
	}
}

// handleChart never fails on storage errors: Current falls back to the default data.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	cfg, fallback := s.Settings.Current(r.Context())
	writeJSON(w, http.StatusOK, chartView(cfg, fallback))
}

// handleChartImage renders the stored chart. Renders are cached per path and
// per config fingerprint; fallback renders are never cached.
func (s *Server) handleChartImage(f render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		cfg, fallback := s.Settings.Current(r.Context())
		version := cfg.Fingerprint()
		if s.Cache != nil && !fallback {
			if e, ok := s.Cache.Lookup(key, version); ok {
				w.Header().Set("Content-Type", e.ContentType)
				w.Header().Set("X-Cache", "HIT")
				_, _ = w.Write(e.Body)
				return
			}
		}
		var buf bytes.Buffer
		if err := s.Renderer.Render(&buf, render.NewLayout(chart.Title(cfg.ProgramService, cfg.Period), chart.Parse(cfg.TargetData)), f); err != nil {
			s.Log.Error("chart render failed", zap.String("format", string(f)), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if s.Cache != nil && !fallback {
			s.Cache.Put(key, revalidate.Entry{Version: version, ContentType: f.ContentType(), Body: buf.Bytes()})
		}
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("X-Cache", "MISS")
		_, _ = w.Write(buf.Bytes())
	}
}

// handleGallery answers with an empty list when the store fails.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultGalleryLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	items := []gallery.Record{}
	if s.Gallery != nil {
		got, err := s.Gallery.List(r.Context(), q.Get("category"), limit)
		if err != nil {
			s.Log.Warn("gallery list failed, serving empty list", zap.Error(err))
		} else if got != nil {
			items = got
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "ukm-ponja",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"export":    s.Exporter != nil,
		"insight":   s.Insight != nil,
	})
}
