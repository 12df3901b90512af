package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"promptbox-backend/internal/middleware"
	"promptbox-backend/internal/models"
	"promptbox-backend/internal/services"
	"promptbox-backend/internal/worker"
)

type submitter interface {
	Begin(ctx context.Context, sessionID uuid.UUID, text string) (*services.Submission, error)
	Run(ctx context.Context, sub *services.Submission) services.SubmitResult
	Display(ctx context.Context, sessionID uuid.UUID) (*models.DisplayState, error)
}

type dispatcher interface {
	Reserve() (worker.Reservation, bool)
}

type SubmitHandler struct {
	submitService submitter
	dispatcher    dispatcher
}

func NewSubmitHandler(submitService submitter, dispatcher dispatcher) *SubmitHandler {
	return &SubmitHandler{
		submitService: submitService,
		dispatcher:    dispatcher,
	}
}

// Submit accepts one form submission and answers 202 right away. The result
// reaches the page through the display slot, never through this response.
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	text, err := readInputText(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	// The token is only issued once the submission is sure to run, so a
	// refused submission never outranks one that was accepted.
	res, ok := h.dispatcher.Reserve()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("SHUTTING_DOWN", "Server is shutting down", r))
		return
	}

	sessionID := middleware.GetSessionID(r.Context())
	sub, err := h.submitService.Begin(r.Context(), sessionID, text)
	if err != nil {
		res.Release()
		log.Printf("Submit: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResp("UNAVAILABLE", "Display store unavailable", r))
		return
	}

	res.Start(func(ctx context.Context) {
		h.submitService.Run(ctx, sub)
	})

	writeJSON(w, http.StatusAccepted, models.SubmitAccepted{
		SubmissionID: sub.ID.String(),
		Sequence:     sub.Sequence,
	})
}

func (h *SubmitHandler) Display(w http.ResponseWriter, r *http.Request) {
	state, err := h.submitService.Display(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("UNAVAILABLE", "Display store unavailable", r))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// readInputText takes the field value as sent: JSON {"input_text"} or the
// inputText form field. Nothing is trimmed.
func readInputText(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req models.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.InputText, nil
	}
	return r.PostFormValue("inputText"), nil
}
