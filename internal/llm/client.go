package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ErrEmptyCompletion is returned when a backend answers without any text.
var ErrEmptyCompletion = errors.New("model returned no completion")

type Message struct {
	Role    string
	Content string
}

// Conversation is a single system+user turn.
func Conversation(system, user string) []Message {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}
	return append(msgs, Message{Role: RoleUser, Content: user})
}

// Usage counts the tokens billed for one completion.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}

// Completion is the first alternative of a model answer.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Client is a chat-completion backend. Implementations make exactly one
// request per call.
type Client interface {
	Complete(ctx context.Context, messages []Message) (Completion, error)
}
