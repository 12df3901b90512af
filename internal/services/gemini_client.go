package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"promptbox-backend/internal/models"
)

// GeminiClient serves gemini-* models through the Gemini SDK.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		model:     client.GenerativeModel(model),
		modelName: model,
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

func (c *GeminiClient) Model() string {
	return c.modelName
}

func (c *GeminiClient) Complete(ctx context.Context, text string) models.Outcome {
	resp, err := c.model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return models.TransportError(fmt.Errorf("Gemini API error: %w", err))
	}

	reply, ok := extractText(resp)
	if !ok {
		return models.EmptyResult(0)
	}
	return models.Success(reply, 0)
}

// extractText joins the text parts of the first candidate. ok is false when the
// response has no candidate or no text part.
func extractText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}

	var text strings.Builder
	found := false
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
			found = true
		}
	}
	return text.String(), found
}
