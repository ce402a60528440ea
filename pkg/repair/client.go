package repair

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// RewriteClient is the external rule-authoring collaborator used for scoped
// partial-regen rewrites.
type RewriteClient interface {
	// Complete sends a system prompt and user prompt and returns the
	// assistant's response text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the model name for provenance tracking.
	ModelName() string
}

// OpenAIClient implements RewriteClient against an OpenAI-compatible chat
// completions endpoint.
type OpenAIClient struct {
	Endpoint   string // e.g. https://api.openai.com/v1
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// OpenAIConfig holds configuration for creating a rewrite client.
type OpenAIConfig struct {
	Endpoint string
	APIKey   string
	Model    string
}

// NewOpenAIClient creates a client from explicit config.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("RULECHECK_LLM_ENDPOINT is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("RULECHECK_LLM_API_KEY is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("RULECHECK_LLM_MODEL is required")
	}
	return &OpenAIClient{
		Endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// NewOpenAIClientFromEnv creates a client from environment variables:
//
//	RULECHECK_LLM_ENDPOINT – required
//	RULECHECK_LLM_API_KEY  – required
//	RULECHECK_LLM_MODEL    – required
func NewOpenAIClientFromEnv() (*OpenAIClient, error) {
	return NewOpenAIClient(OpenAIConfig{
		Endpoint: os.Getenv("RULECHECK_LLM_ENDPOINT"),
		APIKey:   os.Getenv("RULECHECK_LLM_API_KEY"),
		Model:    os.Getenv("RULECHECK_LLM_MODEL"),
	})
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// ModelName returns the configured model for provenance tracking.
func (c *OpenAIClient) ModelName() string {
	return c.Model
}

// Complete sends a chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	url := c.Endpoint + "/chat/completions"

	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: 8192,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rewrite endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("API error [%s]: %s", chatResp.Error.Code, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	if chatResp.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("rewrite response was truncated (hit max_tokens)")
	}

	return chatResp.Choices[0].Message.Content, nil
}
