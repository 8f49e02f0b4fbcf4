package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultOpenAIURL   = "https://api.openai.com/v1/chat/completions"
	DefaultOpenAIModel = "gpt-3.5-turbo"

	narratorSystemPrompt = "You are an AI financial assistant that explains loan rejections."
	maxErrorBodyBytes    = 512
)

var (
	// ErrTimeoutOrQuota marks generator failures worth retrying: timeouts,
	// rate limits and upstream 5xx responses.
	ErrTimeoutOrQuota = errors.New("text generation timed out or hit quota")

	ErrGeneratorDisabled = errors.New("text generation disabled: no API key configured")
)

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIConfig configures the chat completions client.
type OpenAIConfig struct {
	APIKey    string
	URL       string
	Model     string
	MaxTokens int
}

type OpenAIGenerator struct {
	apiKey     string
	apiURL     string
	model      string
	maxTokens  int
	enabled    bool
	httpClient *http.Client
}

type OpenAIRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// NewOpenAIGenerator builds a generator. Timeouts come from the caller's
// context, not from the HTTP client.
func NewOpenAIGenerator(cfg OpenAIConfig, client *http.Client) *OpenAIGenerator {
	if cfg.URL == "" {
		cfg.URL = DefaultOpenAIURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAIGenerator{
		apiKey:     cfg.APIKey,
		apiURL:     cfg.URL,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		enabled:    cfg.APIKey != "",
		httpClient: client,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if !g.enabled {
		return "", ErrGeneratorDisabled
	}

	reqBody := OpenAIRequest{
		Model: g.model,
		Messages: []Message{
			{Role: "system", Content: narratorSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: g.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeoutOrQuota, err)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		apiErr := fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return "", fmt.Errorf("%w: %v", ErrTimeoutOrQuota, apiErr)
		}
		return "", apiErr
	}

	var openAIResp OpenAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&openAIResp); err != nil {
		return "", fmt.Errorf("decoding API response: %w", err)
	}

	if len(openAIResp.Choices) == 0 {
		return "", errors.New("no response from AI")
	}

	return openAIResp.Choices[0].Message.Content, nil
}
