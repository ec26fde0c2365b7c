package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"ukm-ponja/internal/llm"
)

type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(llm.OpenAIConfig(apiKey, baseURL, "", "")),
		model:  model,
	}
}

func (o *OpenAI) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          o.model,
		N:              1,
		Size:           openai.CreateImageSize1792x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return Image{}, fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return Image{}, ErrNoImageData
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return Image{}, fmt.Errorf("decode openai image: %w", err)
	}
	if len(data) == 0 {
		return Image{}, ErrNoImageData
	}
	return Image{Data: data, MIMEType: "image/png", Model: o.model}, nil
}
