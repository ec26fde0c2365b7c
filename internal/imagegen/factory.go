package imagegen

import (
	"context"
	"fmt"
	"strings"

	"ukm-ponja/internal/config"
)

// New picks the image backend named by cfg.ImageProvider.
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch config.ImageProvider(strings.ToLower(string(cfg.ImageProvider))) {
	case config.ImageProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for image provider %s", cfg.ImageProvider)
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIImage), nil
	case config.ImageProviderGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiImage, "")
	default:
		return nil, fmt.Errorf("unknown image provider: %s", cfg.ImageProvider)
	}
}
