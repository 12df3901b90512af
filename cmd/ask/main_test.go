package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"promptbox-backend/internal/models"
)

func TestTerminalDisplay_PrintsSlotText(t *testing.T) {
	var out bytes.Buffer
	terminalDisplay{out: &out}.PublishDisplay(context.Background(), models.DisplayState{Text: models.NoResponseText})

	if !strings.Contains(out.String(), models.NoResponseText) {
		t.Fatalf("Expected output to contain the slot text, got %q", out.String())
	}
}

type stubLister struct {
	entries []*models.Diagnostic
	session uuid.UUID
}

func (s *stubLister) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.Diagnostic, error) {
	s.session = sessionID
	return s.entries, nil
}

func TestPrintDiagnostics(t *testing.T) {
	session := uuid.New()
	lister := &stubLister{entries: []*models.Diagnostic{
		{Kind: models.OutcomeDecodeError, Detail: "invalid character", StatusCode: 502, CreatedAt: time.Now()},
	}}

	var out bytes.Buffer
	printDiagnostics(context.Background(), &out, lister, session)

	if lister.session != session {
		t.Errorf("Expected lookup for session %s, got %s", session, lister.session)
	}
	for _, want := range []string{string(models.OutcomeDecodeError), "status=502", "invalid character"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected output to contain %q, got %q", want, out.String())
		}
	}
}

func TestPrintDiagnostics_Empty(t *testing.T) {
	var out bytes.Buffer
	printDiagnostics(context.Background(), &out, &stubLister{}, uuid.New())
	if !strings.Contains(out.String(), "No failures") {
		t.Fatalf("Expected empty notice, got %q", out.String())
	}
}

func TestPrintDiagnostics_NotConfigured(t *testing.T) {
	var out bytes.Buffer
	printDiagnostics(context.Background(), &out, nil, uuid.New())
	if !strings.Contains(out.String(), "DIAGNOSTICS_DB") {
		t.Fatalf("Expected configuration hint, got %q", out.String())
	}
}
