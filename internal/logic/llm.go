package logic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultExtractionModel = "claude-haiku-4-5-20251001"
	DefaultChatModel       = "claude-sonnet-4-6"
)

// LLM sends one prompt and returns the text of the reply
type LLM interface {
	Complete(ctx context.Context, prompt string, maxTokens int64) (string, error)
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicLLM struct {
	messages AnthropicMessager
	model    string
}

// NewAnthropicLLM returns ErrLLMUnavailable when apiKey is empty
func NewAnthropicLLM(apiKey, model string) (*AnthropicLLM, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrLLMUnavailable
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicLLMWithMessager(&c.Messages, model), nil
}

func NewAnthropicLLMWithMessager(m AnthropicMessager, model string) *AnthropicLLM {
	return &AnthropicLLM{messages: m, model: model}
}

func (a *AnthropicLLM) Complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic %s: %w", a.model, err)
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}
