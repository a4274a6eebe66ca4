package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultMaxTokens = 1024
	openAIMaxTokens  = 8192

	openAIRetryBase = time.Second
)

// OpenAIProvider serves both the openai and local backends: anything
// speaking the OpenAI chat-completions protocol.
type OpenAIProvider struct {
	client    *openai.Client
	name      string
	model     string
	retryMax  int
	retryBase time.Duration
}

// NewOpenAIProvider builds a provider for the given endpoint. baseURL
// may carry the canonical /chat/completions suffix; the SDK wants the
// client root, so the suffix is stripped back off.
func NewOpenAIProvider(name, apiKey, baseURL, model string, maxRetries int) *OpenAIProvider {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := clientRootURL(baseURL); v != "" {
		cfg.BaseURL = v
	}

	if maxRetries < 0 {
		maxRetries = 0
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "openai"
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(cfg),
		name:      name,
		model:     strings.TrimSpace(model),
		retryMax:  maxRetries,
		retryBase: openAIRetryBase,
	}
}

// clientRootURL strips the request-endpoint suffix from a normalized
// base URL, leaving the API root the SDK expects.
func clientRootURL(baseURL string) string {
	v := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if v == "" {
		return ""
	}
	return strings.TrimSuffix(v, "/chat/completions")
}

func (p *OpenAIProvider) Name() string {
	if p == nil {
		return "openai"
	}
	return p.name
}

func (p *OpenAIProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: openai: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: openai: nil context")
	}
	if req == nil {
		return nil, errors.New("llm: openai: nil request")
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.System); system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    normalizeRole(m.Role),
			Content: m.Content,
		})
	}

	r := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    msgs,
		MaxTokens:   clampMaxTokens(req.MaxTokens),
		Temperature: float32(req.Temperature),
	}

	resp, err := p.doWithRetry(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: openai: empty choices")
	}

	choice := resp.Choices[0]
	return &Response{
		Text:       choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func (p *OpenAIProvider) doWithRetry(ctx context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	base := p.retryBase
	if base <= 0 {
		base = openAIRetryBase
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = p.client.CreateChatCompletion(ctx, r)
		if err == nil {
			return resp, nil
		}
		if !shouldRetryOpenAI(err) || attempt >= p.retryMax {
			return resp, err
		}
		if serr := sleepWithContext(ctx, base*time.Duration(1<<attempt)); serr != nil {
			return resp, serr
		}
	}
}

func shouldRetryOpenAI(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			(apiErr.HTTPStatusCode >= 500 && apiErr.HTTPStatusCode <= 599)
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "assistant":
		return openai.ChatMessageRoleAssistant
	case "system":
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}

func clampMaxTokens(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	if n > openAIMaxTokens {
		return openAIMaxTokens
	}
	return n
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
