package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/movabench/ukreval/internal/config"
)

// Backend identifies the LLM API family an evaluation runs against.
type Backend string

const (
	BackendOpenAI    Backend = "openai"
	BackendAnthropic Backend = "anthropic"
	BackendLocal     Backend = "local"
)

// ChatCompletionsSuffix is the canonical request-endpoint suffix for
// OpenAI-compatible backends.
const ChatCompletionsSuffix = "/chat/completions"

// DefaultOpenAIBaseURL is used for the openai backend when neither the
// caller nor the environment supplies a base URL.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

var (
	ErrUnknownProvider    = errors.New("dispatch: unknown provider")
	ErrMissingModel       = errors.New("dispatch: missing model name")
	ErrMissingOpenAIKey   = errors.New("dispatch: OPENAI_API_KEY is not set")
	ErrMissingClaudeKey   = errors.New("dispatch: ANTHROPIC_API_KEY is not set")
	ErrMissingLocalURL    = errors.New("dispatch: local provider requires a base URL")
)

// Arg is one forwarded model-argument pair. Order is preserved so the
// rendered string is stable.
type Arg struct {
	Key   string
	Value string
}

// Invocation is the fully resolved evaluation request: everything the
// harness needs to run one model against the selected task sets.
type Invocation struct {
	Backend Backend
	Model   string

	// APIKey and BaseURL back the provider client. BaseURL is empty for
	// the anthropic backend and always ends in ChatCompletionsSuffix
	// otherwise.
	APIKey  string
	BaseURL string
	HFToken string

	ModelArgs []Arg

	Tasks             []string
	TasksPath         string
	OutputPath        string
	NumConcurrent     int
	MaxRetries        int
	ApplyChatTemplate bool
	LogSamples        bool
}

// ModelArgsString renders the forwarded model arguments as the
// comma-separated key=value string recorded with each run.
func (inv *Invocation) ModelArgsString() string {
	if inv == nil || len(inv.ModelArgs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(inv.ModelArgs))
	for _, a := range inv.ModelArgs {
		parts = append(parts, a.Key+"="+a.Value)
	}
	return strings.Join(parts, ",")
}

// NormalizeBaseURL appends the chat-completions suffix exactly once. A
// URL already ending in the suffix passes through unchanged.
func NormalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	trimmed := strings.TrimRight(u, "/")
	if strings.HasSuffix(trimmed, ChatCompletionsSuffix) {
		return trimmed
	}
	return trimmed + ChatCompletionsSuffix
}

// Resolve validates provider selection against the resolved
// configuration and builds the invocation. All failures are fatal to
// the caller: they represent missing required input.
func Resolve(provider, model, baseURL string, cfg *config.Config) (*Invocation, error) {
	if cfg == nil {
		return nil, errors.New("dispatch: nil config")
	}

	model = strings.TrimSpace(model)
	if model == "" {
		return nil, ErrMissingModel
	}

	inv := &Invocation{
		Model:             model,
		HFToken:           cfg.HFToken,
		Tasks:             splitTasks(cfg.Tasks),
		TasksPath:         cfg.TasksPath,
		OutputPath:        cfg.OutputPath,
		NumConcurrent:     cfg.NumConcurrent,
		MaxRetries:        cfg.MaxRetries,
		ApplyChatTemplate: true,
		LogSamples:        true,
	}

	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, ErrMissingOpenAIKey
		}
		inv.Backend = BackendOpenAI
		inv.APIKey = cfg.OpenAIAPIKey

		base := strings.TrimSpace(baseURL)
		if base == "" {
			base = cfg.OpenAIBaseURL
		}
		if base == "" {
			base = DefaultOpenAIBaseURL
		}
		inv.BaseURL = NormalizeBaseURL(base)
		inv.ModelArgs = openAIStyleArgs(inv)

	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, ErrMissingClaudeKey
		}
		inv.Backend = BackendAnthropic
		inv.APIKey = cfg.AnthropicAPIKey
		inv.ModelArgs = []Arg{{Key: "model", Value: inv.Model}}

	case "local":
		base := strings.TrimSpace(baseURL)
		if base == "" {
			return nil, ErrMissingLocalURL
		}
		inv.Backend = BackendLocal
		// Local endpoints rarely check credentials but the client
		// requires a bearer token; reuse OPENAI_API_KEY when present.
		inv.APIKey = cfg.OpenAIAPIKey
		if inv.APIKey == "" {
			inv.APIKey = "local"
		}
		inv.BaseURL = NormalizeBaseURL(base)
		inv.ModelArgs = openAIStyleArgs(inv)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	return inv, nil
}

func openAIStyleArgs(inv *Invocation) []Arg {
	args := []Arg{
		{Key: "model", Value: inv.Model},
		{Key: "base_url", Value: inv.BaseURL},
		{Key: "num_concurrent", Value: fmt.Sprintf("%d", inv.NumConcurrent)},
		{Key: "max_retries", Value: fmt.Sprintf("%d", inv.MaxRetries)},
	}
	if inv.HFToken != "" {
		args = append(args, Arg{Key: "hf_token", Value: inv.HFToken})
	}
	return args
}

func splitTasks(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
