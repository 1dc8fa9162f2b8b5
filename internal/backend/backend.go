// Package backend talks to the text-completion service. Each call is one
// synchronous request/response round trip treated as opaque text-in/text-out;
// callers impose no retry policy and surface failures immediately.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/cylon-model-15/shifty/internal/apperr"
)

// Completer is the contract the pipeline sees: complete(model, prompt) -> text.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Provider string // "ollama" (default), "openai", "gemini"
	Host     string // ollama host or openai-compatible base URL
	APIKey   string
}

// New builds a Completer for the configured provider. An unknown provider is
// a configuration error.
func New(ctx context.Context, opts Options) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "ollama"
	}

	switch provider {
	case "ollama":
		return NewOllama(opts.Host), nil
	case "openai":
		return NewOpenAI(opts.APIKey, opts.Host), nil
	case "gemini":
		return NewGemini(ctx, opts.APIKey)
	default:
		return nil, &apperr.ConfigError{Reason: fmt.Sprintf("unsupported backend provider: %s", opts.Provider)}
	}
}

// cleanOutput strips a surrounding code fence some models wrap their answer
// in, and trims whitespace.
func cleanOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```markdown") {
		text = strings.TrimPrefix(text, "```markdown")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
