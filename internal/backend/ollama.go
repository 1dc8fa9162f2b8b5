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

// Ollama completes prompts against a local Ollama instance via /api/generate.
type Ollama struct {
	client   *http.Client
	endpoint string
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// NewOllama builds a client for the given host, defaulting to the local
// instance when the host is empty.
func NewOllama(host string) *Ollama {
	url := strings.TrimSpace(host)
	if url == "" {
		url = "http://localhost:11434"
	}
	url = strings.TrimRight(url, "/")
	if !strings.HasSuffix(url, "/api/generate") {
		url += "/api/generate"
	}

	return &Ollama{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		endpoint: url,
	}
}

func (o *Ollama) Complete(ctx context.Context, model, prompt string) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", &apperr.BackendError{Provider: "ollama", Err: fmt.Errorf("model is required")}
	}

	reqBody := ollamaGenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &apperr.BackendError{Provider: "ollama", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &apperr.BackendError{Provider: "ollama", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", &apperr.BackendError{Provider: "ollama", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &apperr.BackendError{Provider: "ollama", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &apperr.BackendError{
			Provider: "ollama",
			Err:      fmt.Errorf("generate request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &apperr.BackendError{Provider: "ollama", Err: err}
	}

	text := cleanOutput(parsed.Response)
	if text == "" {
		return "", &apperr.BackendError{Provider: "ollama", Err: fmt.Errorf("empty response")}
	}
	return text, nil
}
