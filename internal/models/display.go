package models

import (
	"time"

	"github.com/google/uuid"
)

// DisplayState is the single text slot a session's page renders.
type DisplayState struct {
	SessionID uuid.UUID   `json:"session_id"`
	Sequence  int64       `json:"sequence"`
	Text      string      `json:"text"`
	Outcome   OutcomeKind `json:"outcome,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// WebSocket message types
const WSTypeDisplayUpdate = "display_update"

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// API Error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
