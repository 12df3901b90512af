package services

import (
	"context"

	"promptbox-backend/internal/config"
	"promptbox-backend/internal/models"
)

// ChatClient sends one user message to a chat-completion backend and classifies
// the result. Implementations never return a Go error: every failure is an Outcome.
type ChatClient interface {
	Complete(ctx context.Context, text string) models.Outcome
	Model() string
}

// NewChatClient picks the completion backend for the configured model. The
// returned close func releases SDK resources and is always non-nil.
func NewChatClient(ctx context.Context, cfg *config.Config) (ChatClient, func(), error) {
	if cfg.UsesGemini() {
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ChatModel)
		if err != nil {
			return nil, func() {}, err
		}
		return client, client.Close, nil
	}

	client := NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterURL, cfg.ChatModel).
		WithAttribution(cfg.AppURL, cfg.AppTitle)
	return client, func() {}, nil
}
