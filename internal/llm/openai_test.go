package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func chatCompletionJSON(text string) string {
	resp := map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": text},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 2,
			"total_tokens":      12,
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestClientRootURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://api.openai.com/v1/chat/completions", "https://api.openai.com/v1"},
		{"http://localhost:8000/v1", "http://localhost:8000/v1"},
		{"http://localhost:8000/v1/chat/completions/", "http://localhost:8000/v1"},
	}
	for _, tc := range tests {
		if got := clientRootURL(tc.in); got != tc.want {
			t.Errorf("clientRootURL(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOpenAIComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization: got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletionJSON("B")))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("openai", "sk-test", srv.URL+"/v1/chat/completions", "test-model", 0)
	resp, err := p.Complete(context.Background(), &Request{
		System:   "Answer with a single letter.",
		Messages: []Message{{Role: "user", Content: "Питання: 2+2?"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "B" {
		t.Errorf("Text: got %q", resp.Text)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 2 {
		t.Errorf("Usage: got %+v", resp.Usage)
	}
}

func TestOpenAIComplete_RetriesOn429(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletionJSON("ok")))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("local", "local", srv.URL+"/v1/chat/completions", "test-model", 2)
	p.retryBase = time.Millisecond

	resp, err := p.Complete(context.Background(), &Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text: got %q", resp.Text)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls: got %d, want 2", got)
	}
}

func TestOpenAIComplete_NoRetryOn400(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("openai", "sk-test", srv.URL+"/v1/chat/completions", "test-model", 3)
	p.retryBase = time.Millisecond

	if _, err := p.Complete(context.Background(), &Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	}); err == nil {
		t.Fatalf("Complete: expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls: got %d, want 1 (no retry on 4xx)", got)
	}
}

func TestClampMaxTokens(t *testing.T) {
	t.Parallel()

	if got := clampMaxTokens(0); got != defaultMaxTokens {
		t.Errorf("clampMaxTokens(0): got %d", got)
	}
	if got := clampMaxTokens(1 << 20); got != openAIMaxTokens {
		t.Errorf("clampMaxTokens(big): got %d", got)
	}
	if got := clampMaxTokens(256); got != 256 {
		t.Errorf("clampMaxTokens(256): got %d", got)
	}
}
