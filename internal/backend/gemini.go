package backend

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/cylon-model-15/shifty/internal/apperr"
)

// Gemini completes prompts via the Gemini API.
type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, &apperr.ConfigError{Reason: "gemini backend requires an api key"}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &apperr.BackendError{Provider: "gemini", Err: fmt.Errorf("create client: %w", err)}
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Complete(ctx context.Context, model, prompt string) (string, error) {
	contents := genai.Text(prompt)
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", &apperr.BackendError{Provider: "gemini", Err: err}
	}

	text := cleanOutput(resp.Text())
	if text == "" {
		return "", &apperr.BackendError{Provider: "gemini", Err: fmt.Errorf("empty response")}
	}
	return text, nil
}
