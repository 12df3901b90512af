package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"promptbox-backend/internal/middleware"
	"promptbox-backend/internal/models"
)

type diagnosticLister interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.Diagnostic, error)
}

type DiagnosticsHandler struct {
	repo diagnosticLister
}

// NewDiagnosticsHandler takes a nil repo when no diagnostics store is configured.
func NewDiagnosticsHandler(repo diagnosticLister) *DiagnosticsHandler {
	return &DiagnosticsHandler{repo: repo}
}

func (h *DiagnosticsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Diagnostics store not configured", r))
		return
	}

	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, 100)
	}

	entries, err := h.repo.ListBySession(r.Context(), middleware.GetSessionID(r.Context()), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load diagnostics", r))
		return
	}
	if entries == nil {
		entries = []*models.Diagnostic{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"diagnostics": entries,
	})
}
