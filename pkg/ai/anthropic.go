package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicBaseURL   = "https://api.anthropic.com"
	defaultAnthropicVersion   = "2023-06-01"
	defaultCompletionModel    = "claude-2"
	defaultCompletionMaxToken = 500
)

// AnthropicConfig configures an AnthropicCompleter.
// An empty APIKey is accepted; the upstream rejects the call instead.
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	Version    string
	HTTPClient *http.Client
}

// AnthropicCompleter calls the legacy Anthropic /v1/complete endpoint.
type AnthropicCompleter struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	version    string
	httpClient *http.Client
}

// AnthropicError carries the upstream status and raw error body.
type AnthropicError struct {
	Status int
	Body   string
}

func (e *AnthropicError) Error() string {
	return fmt.Sprintf("anthropic api error: %d %s", e.Status, e.Body)
}

// NewAnthropicCompleter builds a completer with the fixed model and token budget.
func NewAnthropicCompleter(cfg AnthropicConfig) *AnthropicCompleter {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultCompletionModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultCompletionMaxToken
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = defaultAnthropicVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &AnthropicCompleter{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		maxTokens:  maxTokens,
		version:    version,
		httpClient: httpClient,
	}
}

// Complete forwards prompt as-is and returns the completion text verbatim.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Prompt:            prompt,
		Model:             c.model,
		MaxTokensToSample: c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/complete", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("anthropic-version", c.version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return "", &AnthropicError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("anthropic decode: %w", err)
	}
	return out.Completion, nil
}

type completionRequest struct {
	Prompt            string `json:"prompt"`
	Model             string `json:"model"`
	MaxTokensToSample int    `json:"max_tokens_to_sample"`
}

type completionResponse struct {
	Completion string `json:"completion"`
}
