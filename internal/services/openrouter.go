package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"promptbox-backend/internal/models"
)

// OpenRouterClient talks to an OpenAI-compatible chat-completions endpoint.
type OpenRouterClient struct {
	apiKey   string
	url      string
	model    string
	appURL   string
	appTitle string
	client   *http.Client
}

// NewOpenRouterClient returns a client without a request timeout; a call ends
// when its context is done or the transport gives up.
func NewOpenRouterClient(apiKey, url, model string) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey: apiKey,
		url:    url,
		model:  model,
		client: &http.Client{},
	}
}

// WithAttribution sets the optional HTTP-Referer and X-Title headers OpenRouter
// uses to attribute traffic to an app.
func (c *OpenRouterClient) WithAttribution(appURL, appTitle string) *OpenRouterClient {
	c.appURL = appURL
	c.appTitle = appTitle
	return c
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *OpenRouterClient) WithHTTPClient(client *http.Client) *OpenRouterClient {
	c.client = client
	return c
}

func (c *OpenRouterClient) Model() string {
	return c.model
}

// Complete posts text as a single user message. Any HTTP status counts as a
// response; only the body shape decides between success and an empty result.
func (c *OpenRouterClient) Complete(ctx context.Context, text string) models.Outcome {
	body, err := json.Marshal(models.NewUserPrompt(c.model, text))
	if err != nil {
		return models.TransportError(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return models.TransportError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.appURL != "" {
		req.Header.Set("HTTP-Referer", c.appURL)
	}
	if c.appTitle != "" {
		req.Header.Set("X-Title", c.appTitle)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.TransportError(fmt.Errorf("API request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.TransportError(fmt.Errorf("failed to read response: %w", err))
	}

	return classifyCompletion(data, resp.StatusCode)
}

func classifyCompletion(data []byte, status int) models.Outcome {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.DecodeError(fmt.Errorf("failed to parse response (status %d): %w", status, err), status)
	}

	// Valid JSON that does not fit the envelope is treated like a missing choices list
	var parsed models.ChatCompletionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return models.EmptyResult(status)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return models.EmptyResult(status)
	}

	return models.Success(*parsed.Choices[0].Message.Content, status)
}
