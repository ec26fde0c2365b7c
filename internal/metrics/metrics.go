package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ukm_ponja"

// Metrics owns a private registry. All methods are safe on a nil receiver,
// which is how tests and tools run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	Exports       *prometheus.CounterVec
	SkippedLines  prometheus.Counter
	SettingsSaves *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_exports_total",
			Help:      "Chart image exports by outcome (persisted, transient, failed).",
		}, []string{"outcome"}),
		SkippedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_skipped_lines_total",
			Help:      "Malformed chart input lines dropped on save.",
		}),
		SettingsSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_settings_saves_total",
			Help:      "Chart configuration saves by status.",
		}, []string{"status"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.Exports, m.SkippedLines, m.SettingsSaves, m.HTTPRequests)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveExport(outcome string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SkippedLines.Add(float64(n))
}

func (m *Metrics) ObserveSave(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SettingsSaves.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
