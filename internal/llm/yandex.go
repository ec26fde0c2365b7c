package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Morwran/yagpt"
)

// YandexClient talks to YandexGPT. The IAM token is exchanged once at start
// and lives about 12 hours; long-running processes should be restarted daily.
type YandexClient struct {
	ya       yagpt.YaGPTFace
	iamToken string
}

func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	if oauthToken == "" || folderID == "" {
		return nil, fmt.Errorf("YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required")
	}
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("init yandex iam: %w", err)
	}
	tok, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("create yandex iam token: %w", err)
	}
	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("init yagpt: %w", err)
	}
	return newYandexWith(ya, tok.IamToken), nil
}

func newYandexWith(ya yagpt.YaGPTFace, iamToken string) *YandexClient {
	return &YandexClient{ya: ya, iamToken: iamToken}
}

func (c *YandexClient) Complete(ctx context.Context, messages []Message) (Completion, error) {
	msgs := make([]yagpt.Message, len(messages))
	for i, m := range messages {
		msgs[i] = yagpt.Message{Role: m.Role, Content: m.Content}
	}
	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, msgs)
	if err != nil {
		return Completion{}, fmt.Errorf("yagpt completion: %w", err)
	}
	if resp == nil || len(resp.Alternatives) == 0 || strings.TrimSpace(resp.Alternatives[0].Message.Content) == "" {
		return Completion{}, ErrEmptyCompletion
	}
	model := yagpt.YaModelLite
	if resp.ModelVersion != "" {
		model += "@" + resp.ModelVersion
	}
	return Completion{
		Text:  resp.Alternatives[0].Message.Content,
		Model: model,
		Usage: Usage{
			Prompt:     int(resp.Usage.InputTextTokens),
			Completion: int(resp.Usage.CompletionTokens),
			Total:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
