// Package insight asks a chat model for a short narrative of the chart.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ukm-ponja/internal/chart"
	"ukm-ponja/internal/llm"
	"ukm-ponja/internal/prompt"
	"ukm-ponja/internal/settings"
)

// ErrNoData is returned for a config whose target data has no valid line.
var ErrNoData = errors.New("chart has no data to describe")

type Insight struct {
	Title   string `json:"title"`
	Text    string `json:"text"`
	Model   string `json:"model,omitempty"`
	Records int    `json:"records"`
	Tokens  int    `json:"tokens,omitempty"`
}

type Service struct {
	client llm.Client
	log    *zap.Logger
}

func NewService(client llm.Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, log: log}
}

// Describe makes one model call. No retry.
func (s *Service) Describe(ctx context.Context, cfg settings.Config) (Insight, error) {
	ds := chart.Parse(cfg.TargetData)
	if len(ds) == 0 {
		return Insight{}, ErrNoData
	}
	if s.client == nil {
		return Insight{}, errors.New("text model is not configured")
	}
	req := prompt.Insight(cfg, ds)
	resp, err := s.client.Complete(ctx, llm.Conversation(req.System, req.User))
	if err != nil {
		return Insight{}, fmt.Errorf("chart insight: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Insight{}, fmt.Errorf("chart insight: %w", llm.ErrEmptyCompletion)
	}
	s.log.Info("chart insight generated", zap.String("model", resp.Model), zap.Int("tokens", resp.Usage.Total))
	return Insight{
		Title:   chart.Title(cfg.ProgramService, cfg.Period),
		Text:    text,
		Model:   resp.Model,
		Records: len(ds),
		Tokens:  resp.Usage.Total,
	}, nil
}
