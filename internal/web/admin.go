package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"ukm-ponja/internal/export"
	"ukm-ponja/internal/insight"
	"ukm-ponja/internal/settings"
)

type ctxKey struct{}

// AdminFrom returns the admin identity set by requireAdmin.
func AdminFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requireAdmin checks the bearer token and that its subject is still on the allowlist.
func (s *Server) requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Tokens == nil || s.Admins == nil {
			writeError(w, http.StatusServiceUnavailable, "admin access is not configured")
			return
		}
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.Tokens.Validate(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if !s.Admins.IsAllowed(claims.Subject) {
			s.Log.Warn("admin request from identity not on allowlist", zap.String("subject", claims.Subject))
			writeError(w, http.StatusForbidden, "not an admin")
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims.Subject)))
	}
}

// handleGetConfig returns the stored document; null when none exists.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.Settings.Load(r.Context())
	if err != nil {
		s.Log.Error("load chart settings failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Gagal memuat pengaturan grafik")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "config": cfg})
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var p settings.Patch
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	parsed, err := s.Settings.Save(r.Context(), p)
	if errors.Is(err, settings.ErrEmptyPatch) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.Log.Error("save chart settings failed", zap.String("admin", AdminFrom(r.Context())), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Gagal menyimpan pengaturan grafik")
		return
	}
	s.Log.Info("chart settings updated", zap.String("admin", AdminFrom(r.Context())))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"records": len(parsed.Records),
		"skipped": parsed.Skipped,
	})
}

// handlePreview parses and lays out a config without saving it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var cfg settings.Config
	if err := decodeBody(w, r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, chartView(cfg, false))
}

// handleExport uses the request body as the config when it carries target
// data, the stored config otherwise.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.Exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "image export is not configured")
		return
	}
	var body settings.Config
	if err := decodeBody(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	cfg := body
	if strings.TrimSpace(cfg.TargetData) == "" {
		cfg, _ = s.Settings.Current(r.Context())
	}
	ctx, cancel := export.WithTimeout(r.Context(), s.ExportTimeout)
	defer cancel()
	res, err := s.Exporter.Export(ctx, export.Request{Config: cfg, Trigger: "admin", Actor: AdminFrom(r.Context())})
	if err != nil {
		s.Log.Error("chart export failed", zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": res})
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	if s.Insight == nil {
		writeError(w, http.StatusServiceUnavailable, "text model is not configured")
		return
	}
	cfg, _ := s.Settings.Current(r.Context())
	in, err := s.Insight.Describe(r.Context(), cfg)
	if errors.Is(err, insight.ErrNoData) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.Log.Error("chart insight failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "insight": in})
}
