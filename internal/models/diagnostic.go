package models

import (
	"time"

	"github.com/google/uuid"
)

// Diagnostic is one entry on the diagnostic channel. It never carries the
// submitted text or any credential.
type Diagnostic struct {
	ID         uuid.UUID   `json:"id"`
	SessionID  uuid.UUID   `json:"session_id"`
	Kind       OutcomeKind `json:"kind"`
	Detail     string      `json:"detail"`
	Model      string      `json:"model"`
	StatusCode int         `json:"status_code"`
	CreatedAt  time.Time   `json:"created_at"`
}
