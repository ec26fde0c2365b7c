package settings

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ukm-ponja/internal/chart"
	"ukm-ponja/internal/metrics"
)

// Invalidator drops cached copies of a public page so it is rebuilt with new data.
type Invalidator interface {
	Invalidate(ctx context.Context, path string) error
}

type Service struct {
	store   Store
	inv     Invalidator
	paths   []string
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewService wires a store with the pages to invalidate after each save.
// inv and m may be nil.
func NewService(store Store, inv Invalidator, paths []string, log *zap.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, inv: inv, paths: paths, log: log, metrics: m}
}

// Load passes through to the store: nil means nothing is stored.
func (s *Service) Load(ctx context.Context) (*Config, error) {
	return s.store.Load(ctx)
}

// Current never fails. It falls back to chart.DefaultData when the store has
// no document or cannot be read; the second result reports the fallback.
func (s *Service) Current(ctx context.Context) (Config, bool) {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn("chart settings unavailable, using default data", zap.Error(err))
		return Config{TargetData: chart.DefaultData}, true
	}
	if cfg == nil {
		return Config{TargetData: chart.DefaultData}, true
	}
	return *cfg, false
}

// Save merges the patch into the stored document and then invalidates the
// configured page paths. Invalidation failures are logged, not returned.
func (s *Service) Save(ctx context.Context, p Patch) (chart.Result, error) {
	if p.IsEmpty() {
		return chart.Result{}, ErrEmptyPatch
	}
	var parsed chart.Result
	if p.TargetData != nil {
		parsed = chart.ParseDetailed(*p.TargetData)
	}
	err := s.store.Save(ctx, p)
	s.metrics.ObserveSave(err)
	if err != nil {
		return chart.Result{}, fmt.Errorf("save chart settings: %w", err)
	}
	s.metrics.ObserveSkipped(len(parsed.Skipped))
	s.log.Info("chart settings saved",
		zap.Int("records", len(parsed.Records)),
		zap.Int("skipped", len(parsed.Skipped)))

	s.invalidate(ctx)
	return parsed, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.inv == nil {
		return
	}
	for _, path := range s.paths {
		if err := s.inv.Invalidate(ctx, path); err != nil {
			s.log.Warn("page invalidation failed", zap.String("path", path), zap.Error(err))
		}
	}
}
