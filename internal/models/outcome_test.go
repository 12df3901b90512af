package models

import (
	"errors"
	"testing"
)

func TestOutcomeDisplayText(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
		failed  bool
	}{
		{"success verbatim", Success("  Hello <b>\n", 200), "  Hello <b>\n", false},
		{"success empty content", Success("", 200), "", false},
		{"empty result", EmptyResult(200), NoResponseText, false},
		{"empty result on server error", EmptyResult(500), NoResponseText, false},
		{"transport error", TransportError(errors.New("dial tcp: refused")), ErrorText, true},
		{"decode error", DecodeError(errors.New("invalid character"), 502), ErrorText, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.outcome.DisplayText(); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
			if got := tc.outcome.Failed(); got != tc.failed {
				t.Errorf("Expected Failed()=%v, got %v", tc.failed, got)
			}
		})
	}
}

func TestNewUserPrompt(t *testing.T) {
	req := NewUserPrompt("deepseek/deepseek-r1:free", "  spaced  ")
	if len(req.Messages) != 1 {
		t.Fatalf("Expected exactly one message, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != RoleUser {
		t.Errorf("Expected role %q, got %q", RoleUser, req.Messages[0].Role)
	}
	if req.Messages[0].Content != "  spaced  " {
		t.Errorf("Expected content to be kept verbatim, got %q", req.Messages[0].Content)
	}
}
