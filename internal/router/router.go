package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"promptbox-backend/internal/handlers"
	"promptbox-backend/internal/middleware"
	"promptbox-backend/internal/websocket"
)

func New(
	sessions *middleware.SessionAuth,
	pageHandler *handlers.PageHandler,
	submitHandler *handlers.SubmitHandler,
	diagnosticsHandler *handlers.DiagnosticsHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Form Page ────
	r.Get("/", pageHandler.Index)

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Submission Routes ────
		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware)
			r.Post("/submit", submitHandler.Submit)
			r.Get("/display", submitHandler.Display)
			r.Get("/diagnostics", diagnosticsHandler.List)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
