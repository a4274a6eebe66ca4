package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultGroqUpstream is the OpenAI-compatible chat completions endpoint
// of the Groq API.
const DefaultGroqUpstream = "https://api.groq.com/openai/v1/chat/completions"

const defaultProxyTimeout = 120 * time.Second

// GroqProxy rewrites OpenAI-style chat completion requests so that Groq
// accepts them. Messages are reduced to the fields Groq understands,
// request knobs Groq rejects are dropped, and reasoning controls are
// injected before the request is forwarded upstream.
type GroqProxy struct {
	upstream        string
	apiKey          string
	reasoningHidden bool
	reasoningEffort string
	client          *http.Client
}

// GroqOption configures a GroqProxy.
type GroqOption func(*GroqProxy)

// WithGroqUpstream overrides the forwarding target.
func WithGroqUpstream(upstream string) GroqOption {
	return func(p *GroqProxy) {
		if u := strings.TrimSpace(upstream); u != "" {
			p.upstream = u
		}
	}
}

// WithReasoningHidden controls injection of reasoning_format=hidden.
func WithReasoningHidden(hidden bool) GroqOption {
	return func(p *GroqProxy) { p.reasoningHidden = hidden }
}

// WithReasoningEffort injects a reasoning_effort value into every request.
func WithReasoningEffort(effort string) GroqOption {
	return func(p *GroqProxy) { p.reasoningEffort = strings.TrimSpace(effort) }
}

// WithGroqHTTPClient overrides the forwarding HTTP client.
func WithGroqHTTPClient(client *http.Client) GroqOption {
	return func(p *GroqProxy) {
		if client != nil {
			p.client = client
		}
	}
}

func NewGroqProxy(apiKey string, opts ...GroqOption) (*GroqProxy, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("proxy: missing groq api key")
	}
	p := &GroqProxy{
		upstream:        DefaultGroqUpstream,
		apiKey:          apiKey,
		reasoningHidden: true,
		client:          &http.Client{Timeout: defaultProxyTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Router builds the gin engine serving the proxy endpoints.
func (p *GroqProxy) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/chat/completions", p.handleChatCompletions)
	r.POST("/v1/chat/completions", p.handleChatCompletions)
	return r
}

func (p *GroqProxy) handleChatCompletions(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	p.rewrite(payload)

	body, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode upstream request"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, p.upstream, bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "build upstream request"})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("upstream request failed: %v", err)})
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "read upstream response"})
		return
	}
	c.Data(resp.StatusCode, "application/json", respBody)
}

// rewrite mutates the payload in place into the shape Groq accepts.
func (p *GroqProxy) rewrite(payload map[string]any) {
	if raw, ok := payload["messages"].([]any); ok {
		payload["messages"] = cleanMessages(raw)
	}

	delete(payload, "tokenized_requests")
	delete(payload, "extra_body")

	if p.reasoningHidden {
		payload["reasoning_format"] = "hidden"
	}
	if p.reasoningEffort != "" {
		payload["reasoning_effort"] = p.reasoningEffort
	}
}

// cleanMessages keeps only role, content and an optional name per message.
func cleanMessages(raw []any) []any {
	out := make([]any, 0, len(raw))
	for _, item := range raw {
		msg, ok := item.(map[string]any)
		if !ok {
			continue
		}
		clean := map[string]any{
			"role":    msg["role"],
			"content": msg["content"],
		}
		if name, ok := msg["name"].(string); ok && name != "" {
			clean["name"] = name
		}
		out = append(out, clean)
	}
	return out
}
