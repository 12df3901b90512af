package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"promptbox-backend/internal/handlers"
	"promptbox-backend/internal/middleware"
	"promptbox-backend/internal/models"
	"promptbox-backend/internal/repository"
	"promptbox-backend/internal/services"
	"promptbox-backend/internal/websocket"
	"promptbox-backend/internal/worker"
)

type echoClient struct{}

func (echoClient) Complete(ctx context.Context, text string) models.Outcome {
	return models.Success("echo: "+text, http.StatusOK)
}

func (echoClient) Model() string { return "echo" }

func newTestRouter(t *testing.T) (http.Handler, *middleware.SessionAuth, *worker.Dispatcher) {
	t.Helper()
	sessions := middleware.NewSessionAuth("test-secret", time.Hour)
	display := repository.NewMemoryDisplayRepo(true, 0)
	hub := websocket.NewHub(nil, sessions, display)
	svc := services.NewSubmitService(echoClient{}, display, nil, hub)
	dispatcher := worker.NewDispatcher()
	t.Cleanup(func() { dispatcher.Stop(context.Background()) })

	r := New(
		sessions,
		handlers.NewPageHandler(sessions, false),
		handlers.NewSubmitHandler(svc, dispatcher),
		handlers.NewDiagnosticsHandler(nil),
		hub,
		"http://localhost:8080",
	)
	return r, sessions, dispatcher
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Fatalf("Expected ok health check, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestSubmitRequiresSession(t *testing.T) {
	r, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submit", strings.NewReader(`{"input_text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rr.Code)
	}
}

func TestSubmitThenDisplay(t *testing.T) {
	r, sessions, dispatcher := newTestRouter(t)
	token, _ := sessions.GenerateToken(uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submit", strings.NewReader(`{"input_text":"ping"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rr.Code, rr.Body.String())
	}

	// Wait for the dispatched submission to settle
	if err := dispatcher.Stop(context.Background()); err != nil {
		t.Fatalf("dispatcher stop failed: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/display", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var state models.DisplayState
	if err := json.NewDecoder(rr.Body).Decode(&state); err != nil {
		t.Fatalf("Failed to decode display: %v", err)
	}
	if state.Text != "echo: ping" {
		t.Fatalf("Expected %q, got %q", "echo: ping", state.Text)
	}
}
