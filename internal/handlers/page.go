package handlers

import (
	_ "embed"
	"log"
	"net/http"

	"promptbox-backend/internal/middleware"
)

//go:embed static/index.html
var indexHTML []byte

type PageHandler struct {
	sessions     *middleware.SessionAuth
	secureCookie bool
}

func NewPageHandler(sessions *middleware.SessionAuth, secureCookie bool) *PageHandler {
	return &PageHandler{sessions: sessions, secureCookie: secureCookie}
}

// Index serves the form page, issuing a session cookie when the browser has
// no valid one.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.SessionFromRequest(r); err != nil {
		if _, err := h.sessions.SetCookie(w, h.secureCookie); err != nil {
			log.Printf("Failed to issue session cookie: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(indexHTML)
}
