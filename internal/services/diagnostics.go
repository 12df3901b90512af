package services

import (
	"context"
	"log"

	"promptbox-backend/internal/models"
)

// DiagnosticRecorder is a sink on the diagnostic channel.
type DiagnosticRecorder interface {
	Record(ctx context.Context, d *models.Diagnostic) error
}

// LogRecorder writes diagnostics to the standard logger.
type LogRecorder struct{}

func (LogRecorder) Record(ctx context.Context, d *models.Diagnostic) error {
	log.Printf("Diagnostic %s [%s] session=%s model=%s status=%d: %s",
		d.ID, d.Kind, d.SessionID, d.Model, d.StatusCode, d.Detail)
	return nil
}

// MultiRecorder fans a diagnostic out to every sink. A failing sink is logged
// and does not stop the others.
type MultiRecorder []DiagnosticRecorder

func (m MultiRecorder) Record(ctx context.Context, d *models.Diagnostic) error {
	for _, r := range m {
		if err := r.Record(ctx, d); err != nil {
			log.Printf("Failed to record diagnostic %s: %v", d.ID, err)
		}
	}
	return nil
}
