package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"promptbox-backend/internal/models"
)

// DisplayStore holds one display slot per session and hands out the request
// tokens that decide which submission may write it.
type DisplayStore interface {
	Begin(ctx context.Context, sessionID uuid.UUID) (int64, error)
	Apply(ctx context.Context, state models.DisplayState) (bool, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*models.DisplayState, error)
}

// DisplayPublisher pushes an applied display state to whoever renders it.
type DisplayPublisher interface {
	PublishDisplay(ctx context.Context, state models.DisplayState)
}

// Submission is one form submission between Begin and Run.
type Submission struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Sequence  int64
	Text      string
}

type SubmitResult struct {
	Outcome models.Outcome
	State   models.DisplayState
	Applied bool
}

type SubmitService struct {
	client      ChatClient
	display     DisplayStore
	diagnostics DiagnosticRecorder
	publisher   DisplayPublisher
}

// NewSubmitService wires the submit core. diagnostics and publisher may be nil.
func NewSubmitService(client ChatClient, display DisplayStore, diagnostics DiagnosticRecorder, publisher DisplayPublisher) *SubmitService {
	if diagnostics == nil {
		diagnostics = LogRecorder{}
	}
	return &SubmitService{
		client:      client,
		display:     display,
		diagnostics: diagnostics,
		publisher:   publisher,
	}
}

// Begin issues the request token for a new submission. The text is kept as
// given: no trimming, no length limit, empty is fine.
func (s *SubmitService) Begin(ctx context.Context, sessionID uuid.UUID, text string) (*Submission, error) {
	seq, err := s.display.Begin(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to begin submission: %w", err)
	}
	return &Submission{
		ID:        uuid.New(),
		SessionID: sessionID,
		Sequence:  seq,
		Text:      text,
	}, nil
}

// Run makes the single outbound call for sub and writes the display slot.
func (s *SubmitService) Run(ctx context.Context, sub *Submission) SubmitResult {
	outcome := s.client.Complete(ctx, sub.Text)

	if outcome.Failed() {
		s.diagnostics.Record(ctx, &models.Diagnostic{
			ID:         sub.ID,
			SessionID:  sub.SessionID,
			Kind:       outcome.Kind,
			Detail:     errDetail(outcome.Err),
			Model:      s.client.Model(),
			StatusCode: outcome.StatusCode,
			CreatedAt:  time.Now(),
		})
	}

	state := models.DisplayState{
		SessionID: sub.SessionID,
		Sequence:  sub.Sequence,
		Text:      outcome.DisplayText(),
		Outcome:   outcome.Kind,
		UpdatedAt: time.Now(),
	}

	applied, err := s.display.Apply(ctx, state)
	if err != nil {
		log.Printf("Submission %s: failed to update display: %v", sub.ID, err)
	}
	if applied && s.publisher != nil {
		s.publisher.PublishDisplay(ctx, state)
	}

	return SubmitResult{Outcome: outcome, State: state, Applied: applied}
}

// Submit runs Begin and Run back to back.
func (s *SubmitService) Submit(ctx context.Context, sessionID uuid.UUID, text string) (SubmitResult, error) {
	sub, err := s.Begin(ctx, sessionID, text)
	if err != nil {
		return SubmitResult{}, err
	}
	return s.Run(ctx, sub), nil
}

func (s *SubmitService) Display(ctx context.Context, sessionID uuid.UUID) (*models.DisplayState, error) {
	return s.display.Get(ctx, sessionID)
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
