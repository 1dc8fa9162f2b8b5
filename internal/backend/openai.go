package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cylon-model-15/shifty/internal/apperr"
)

// OpenAI completes prompts against an OpenAI-compatible chat-completions
// endpoint, which covers the official API and local servers that mimic it.
type OpenAI struct {
	client   *http.Client
	apiKey   string
	endpoint string
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAI(apiKey, baseURL string) *OpenAI {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/chat/completions"
	} else {
		endpoint = strings.TrimRight(endpoint, "/")
		if !strings.HasSuffix(endpoint, "/chat/completions") {
			if strings.HasSuffix(endpoint, "/v1") {
				endpoint += "/chat/completions"
			} else {
				endpoint += "/v1/chat/completions"
			}
		}
	}
	return &OpenAI{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		apiKey:   apiKey,
		endpoint: endpoint,
	}
}

func (s *OpenAI) Complete(ctx context.Context, model, prompt string) (string, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return "", &apperr.BackendError{Provider: "openai", Err: fmt.Errorf("api key is required")}
	}
	if strings.TrimSpace(model) == "" {
		return "", &apperr.BackendError{Provider: "openai", Err: fmt.Errorf("model is required")}
	}

	reqBody := openAIChatRequest{
		Model: model,
		Messages: []openAIChatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &apperr.BackendError{Provider: "openai", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &apperr.BackendError{Provider: "openai", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &apperr.BackendError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &apperr.BackendError{Provider: "openai", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &apperr.BackendError{
			Provider: "openai",
			Err:      fmt.Errorf("chat request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &apperr.BackendError{Provider: "openai", Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &apperr.BackendError{Provider: "openai", Err: fmt.Errorf("empty response")}
	}

	text := cleanOutput(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", &apperr.BackendError{Provider: "openai", Err: fmt.Errorf("empty response")}
	}
	return text, nil
}
