package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ReasoningProxy forwards chat completion requests to an
// OpenAI-compatible target and repairs responses from reasoning models
// that put the answer in reasoning_content and leave content empty.
type ReasoningProxy struct {
	target string
	client *http.Client
}

func NewReasoningProxy(target string) (*ReasoningProxy, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("proxy: missing reasoning proxy target")
	}
	return &ReasoningProxy{
		target: strings.TrimRight(target, "/"),
		client: &http.Client{Timeout: defaultProxyTimeout},
	}, nil
}

// Router builds the gin engine serving the proxy endpoints.
func (p *ReasoningProxy) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/chat/completions", p.handleChatCompletions)
	r.POST("/v1/chat/completions", p.handleChatCompletions)
	return r
}

func (p *ReasoningProxy) handleChatCompletions(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read request body"})
		return
	}

	url := p.target + "/chat/completions"
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "build upstream request"})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if auth := c.GetHeader("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

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

	if resp.StatusCode == http.StatusOK {
		if repaired, changed := repairResponse(respBody); changed {
			respBody = repaired
		}
	}
	c.Data(resp.StatusCode, "application/json", respBody)
}

// repairResponse fills empty message content from reasoning_content.
// Returns the original bytes unchanged when nothing needed fixing.
func repairResponse(body []byte) ([]byte, bool) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return body, false
	}
	choices, ok := payload["choices"].([]any)
	if !ok {
		return body, false
	}

	changed := false
	for _, item := range choices {
		choice, ok := item.(map[string]any)
		if !ok {
			continue
		}
		msg, ok := choice["message"].(map[string]any)
		if !ok {
			continue
		}
		content, _ := msg["content"].(string)
		if strings.TrimSpace(content) != "" {
			continue
		}
		reasoning, _ := msg["reasoning_content"].(string)
		if strings.TrimSpace(reasoning) == "" {
			continue
		}
		msg["content"] = ExtractFinalAnswer(reasoning)
		changed = true
	}
	if !changed {
		return body, false
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return body, false
	}
	return out, true
}

// answerMarkers are tried in order. The final answer is whatever
// follows the first marker found in the reasoning text.
var answerMarkers = []string{"</think>", "</reasoning>", "**Answer:**", "Answer:"}

// ExtractFinalAnswer pulls the conclusion out of a chain-of-thought
// transcript. Falls back to the last non-empty line.
func ExtractFinalAnswer(reasoning string) string {
	for _, marker := range answerMarkers {
		if idx := strings.Index(reasoning, marker); idx >= 0 {
			if tail := strings.TrimSpace(reasoning[idx+len(marker):]); tail != "" {
				return tail
			}
		}
	}

	lines := strings.Split(reasoning, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return strings.TrimSpace(reasoning)
}
