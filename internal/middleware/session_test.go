package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionAuth_TokenRoundTrip(t *testing.T) {
	auth := NewSessionAuth("test-secret", time.Hour)
	sessionID := uuid.New()

	token, err := auth.GenerateToken(sessionID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	got, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if got != sessionID {
		t.Fatalf("Expected session %s, got %s", sessionID, got)
	}
}

func TestSessionAuth_RejectsForeignAndExpiredTokens(t *testing.T) {
	auth := NewSessionAuth("test-secret", time.Hour)
	other := NewSessionAuth("other-secret", time.Hour)
	expired := NewSessionAuth("test-secret", -time.Minute)

	foreign, _ := other.GenerateToken(uuid.New())
	if _, err := auth.ParseToken(foreign); err == nil {
		t.Error("Expected token signed with another secret to be rejected")
	}

	old, _ := expired.GenerateToken(uuid.New())
	if _, err := auth.ParseToken(old); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestTokenFromRequest_Sources(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
		ok    bool
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "abc", true},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }, "", false},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "fromcookie"}) }, "fromcookie", true},
		{"query param", func(r *http.Request) { r.URL.RawQuery = "token=fromquery" }, "fromquery", true},
		{"nothing", func(r *http.Request) {}, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/display", nil)
			tc.setup(req)

			got, err := TokenFromRequest(req)
			if (err == nil) != tc.ok || got != tc.want {
				t.Errorf("Expected (%q, ok=%v), got (%q, err=%v)", tc.want, tc.ok, got, err)
			}
		})
	}
}

func TestSessionAuth_Middleware(t *testing.T) {
	auth := NewSessionAuth("test-secret", time.Hour)
	sessionID := uuid.New()
	token, _ := auth.GenerateToken(sessionID)

	var seen uuid.UUID
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/display", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if seen != sessionID {
		t.Fatalf("Expected session %s in context, got %s", sessionID, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/display", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", rr.Code)
	}

	var body map[string]map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body["error"]["code"] != "UNAUTHORIZED" {
		t.Errorf("Expected UNAUTHORIZED, got %q", body["error"]["code"])
	}
}

func TestSessionAuth_SetCookie(t *testing.T) {
	auth := NewSessionAuth("test-secret", time.Hour)
	rr := httptest.NewRecorder()

	sessionID, err := auth.SetCookie(rr, false)
	if err != nil {
		t.Fatalf("failed to set cookie: %v", err)
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName {
		t.Fatalf("Expected one session cookie, got %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("Expected HttpOnly session cookie")
	}

	got, err := auth.ParseToken(cookies[0].Value)
	if err != nil || got != sessionID {
		t.Fatalf("Expected cookie to carry session %s, got %s (%v)", sessionID, got, err)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("Expected generated request ID to be echoed, got %q / %q", seen, rr.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Header().Get(RequestIDHeader) != "given-id" {
		t.Fatalf("Expected incoming request ID to be kept, got %q", rr.Header().Get(RequestIDHeader))
	}
}

func TestCORS(t *testing.T) {
	handler := CORS("http://localhost:8080")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/submit", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:8080" {
		t.Errorf("Expected allowed origin header, got %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Expected no CORS header for other origins")
	}
}
