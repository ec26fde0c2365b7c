package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/Morwran/yagpt"

	"ukm-ponja/internal/config"
)

type fakeYa struct {
	token string
	got   []yagpt.Message
	resp  *yagpt.CompletionResponse
	err   error
}

func (f *fakeYa) CompletionWithCtx(_ context.Context, iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	f.token = iamTok
	f.got = m
	return f.resp, f.err
}

func (f *fakeYa) Completion(iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	return f.CompletionWithCtx(context.Background(), iamTok, m)
}

func TestYandexClient_Complete(t *testing.T) {
	ya := &fakeYa{resp: &yagpt.CompletionResponse{
		Alternatives: []yagpt.Alternative{{Message: yagpt.Message{Role: "assistant", Content: "ISPA tertinggi"}}},
		Usage:        yagpt.ContentUsage{InputTextTokens: 7, CompletionTokens: 3, TotalTokens: 10},
		ModelVersion: "23.10.2024",
	}}
	c := newYandexWith(ya, "iam-1")

	got, err := c.Complete(context.Background(), Conversation("sys", "data"))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ya.token != "iam-1" {
		t.Fatalf("iam token not passed: %q", ya.token)
	}
	if len(ya.got) != 2 || ya.got[0].Role != RoleSystem || ya.got[1].Content != "data" {
		t.Fatalf("unexpected messages: %+v", ya.got)
	}
	if got.Text != "ISPA tertinggi" || got.Usage != (Usage{Prompt: 7, Completion: 3, Total: 10}) {
		t.Fatalf("unexpected completion: %+v", got)
	}
	if got.Model != yagpt.YaModelLite+"@23.10.2024" {
		t.Fatalf("unexpected model: %q", got.Model)
	}
}

func TestYandexClient_EmptyAndError(t *testing.T) {
	for _, resp := range []*yagpt.CompletionResponse{nil, {}, {Alternatives: []yagpt.Alternative{{Message: yagpt.Message{Content: " "}}}}} {
		_, err := newYandexWith(&fakeYa{resp: resp}, "t").Complete(context.Background(), Conversation("", "u"))
		if !errors.Is(err, ErrEmptyCompletion) {
			t.Fatalf("expected ErrEmptyCompletion for %+v, got %v", resp, err)
		}
	}
	boom := errors.New("quota")
	_, err := newYandexWith(&fakeYa{err: boom}, "t").Complete(context.Background(), Conversation("", "u"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewClient_YandexNeedsCredentials(t *testing.T) {
	if _, err := NewClient(&config.Config{LLMProvider: "yandex"}); err == nil {
		t.Fatalf("expected error without yandex credentials")
	}
}

func TestConversation(t *testing.T) {
	if msgs := Conversation("", "u"); len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}
