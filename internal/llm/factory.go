package llm

import (
	"errors"
	"fmt"

	"github.com/movabench/ukreval/internal/dispatch"
)

// FromInvocation builds the provider a resolved invocation calls for.
func FromInvocation(inv *dispatch.Invocation) (Provider, error) {
	if inv == nil {
		return nil, errors.New("llm: nil invocation")
	}

	switch inv.Backend {
	case dispatch.BackendOpenAI:
		return NewOpenAIProvider("openai", inv.APIKey, inv.BaseURL, inv.Model, inv.MaxRetries), nil
	case dispatch.BackendLocal:
		return NewOpenAIProvider("local", inv.APIKey, inv.BaseURL, inv.Model, inv.MaxRetries), nil
	case dispatch.BackendAnthropic:
		return NewAnthropicProvider(inv.APIKey, inv.Model, inv.MaxRetries), nil
	default:
		return nil, fmt.Errorf("llm: unknown backend %q", inv.Backend)
	}
}
