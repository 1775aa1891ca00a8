package llm

import (
	"context"
	"fmt"
)

// single completion call to a language model
type Request struct {
	System      string // instruction block
	Priming     string // optional canned acknowledgement inserted before the user turn
	User        string // the user message
	Temperature float64
	MaxTokens   int
	JSONOnly    bool // request a JSON response body where the provider supports it
}

// interface for text completion
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// completion service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// creates Client based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	model string,
) (Client, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey, model)
	case ProviderOpenAI:
		return NewOpenAIClient(ctx, apiKey, model)
	case ProviderAnthropic:
		return NewAnthropicClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", provider)
	}
}
