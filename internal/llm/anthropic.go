package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/movabench/ukreval/internal/anthropic"
)

// AnthropicProvider adapts the anthropic client to the Provider
// interface.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicProvider(apiKey, model string, maxRetries int) *AnthropicProvider {
	opts := []anthropic.Option{anthropic.WithRetry(maxRetries)}
	if v := strings.TrimSpace(model); v != "" {
		opts = append(opts, anthropic.WithModel(v))
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(strings.TrimSpace(apiKey), opts...),
		model:  strings.TrimSpace(model),
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: anthropic: nil client")
	}
	if req == nil {
		return nil, errors.New("llm: anthropic: nil request")
	}

	msgs := make([]anthropic.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := strings.TrimSpace(m.Role)
		if role == "" {
			role = "user"
		}
		msgs = append(msgs, anthropic.Message{Role: role, Content: m.Content})
	}

	resp, err := p.client.Complete(ctx, &anthropic.Request{
		Model:       p.model,
		System:      req.System,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("llm: anthropic: nil response")
	}

	return &Response{
		Text:       resp.Text,
		StopReason: resp.StopReason,
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
