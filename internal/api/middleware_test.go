package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	testAPIKey     = "test-secret-key-12345"
	testCustomerID = "cust-42"
)

// customerEcho writes the resolved customer ID, or "none".
func customerEcho() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, err := CustomerIDFromContext(r.Context())
		if err != nil {
			id = "none"
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(id))
	}), &called
}

// captureLogs routes slog output into a JSON buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })
	return &buf
}

func TestCurrentUserMiddleware_ValidToken(t *testing.T) {
	handler, called := customerEcho()
	mw := CurrentUserMiddleware(testAPIKey, testCustomerID)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !*called {
		t.Error("handler was not called")
	}
	if got := w.Body.String(); got != testCustomerID {
		t.Errorf("customer = %q, want %q", got, testCustomerID)
	}
}

func TestCurrentUserMiddleware_NoKeyConfigured(t *testing.T) {
	handler, called := customerEcho()
	mw := CurrentUserMiddleware("", testCustomerID)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !*called {
		t.Error("handler was not called")
	}
	if got := w.Body.String(); got != testCustomerID {
		t.Errorf("customer = %q, want %q", got, testCustomerID)
	}
}

func TestCurrentUserMiddleware_Rejects(t *testing.T) {
	captureLogs(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer wrong-key"},
		{"no bearer prefix", testAPIKey},
		{"lowercase scheme", "bearer " + testAPIKey},
		{"empty token", "Bearer "},
		{"whitespace token", "Bearer    "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, called := customerEcho()
			mw := CurrentUserMiddleware(testAPIKey, testCustomerID)(handler)

			req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			if *called {
				t.Error("handler should not be called")
			}
		})
	}
}

func TestCurrentUserMiddleware_ResponseFormat_RFC7807(t *testing.T) {
	captureLogs(t)
	handler, _ := customerEcho()
	mw := CurrentUserMiddleware(testAPIKey, testCustomerID)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}

	var p Problem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", p.Status)
	}
	if p.Type != "https://finquest.dev/errors/unauthorized" {
		t.Errorf("type = %q", p.Type)
	}
	if p.Instance != "/api/transactions" {
		t.Errorf("instance = %q, want /api/transactions", p.Instance)
	}
}

func TestCurrentUserMiddleware_NoKeyLeak(t *testing.T) {
	logs := captureLogs(t)
	handler, _ := customerEcho()
	mw := CurrentUserMiddleware(testAPIKey, testCustomerID)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if strings.Contains(w.Body.String(), testAPIKey) {
		t.Error("response body contains the API key")
	}
	if strings.Contains(logs.String(), testAPIKey) {
		t.Error("log output contains the API key")
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer abc123", "abc123"},
		{"trims whitespace", "Bearer  abc123 ", "abc123"},
		{"missing", "", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
		{"lowercase", "bearer abc123", ""},
		{"prefix only", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstantTimeEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"secret", "secret", true},
		{"secret", "Secret", false},
		{"secret", "secret1", false},
		{"", "", true},
		{"", "secret", false},
	}

	for _, tt := range tests {
		if got := constantTimeEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("constantTimeEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCORSMiddleware_SetsHeaders(t *testing.T) {
	handler, called := customerEcho()
	mw := CORSMiddleware("*")(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if !*called {
		t.Error("handler was not called")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("Allow-Headers = %q, want Authorization listed", got)
	}
	if got := w.Header().Get("Vary"); got != "" {
		t.Errorf("Vary = %q, want empty for wildcard origin", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	handler, called := customerEcho()
	mw := CORSMiddleware("http://localhost:3000")(handler)

	req := httptest.NewRequest(http.MethodOptions, "/api/streaks/start", nil)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if *called {
		t.Error("preflight should not reach the handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want Origin", got)
	}
}

func TestGetRequestID(t *testing.T) {
	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetRequestID(r.Context())))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Body.String() == "" {
		t.Error("expected non-empty request ID")
	}
}

func TestGetRequestID_NoContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("GetRequestID without middleware = %q, want empty", got)
	}
}

func TestLogLevelForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   slog.Level
	}{
		{200, slog.LevelInfo},
		{201, slog.LevelInfo},
		{304, slog.LevelInfo},
		{400, slog.LevelWarn},
		{401, slog.LevelWarn},
		{404, slog.LevelWarn},
		{500, slog.LevelError},
		{503, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			if got := logLevelForStatus(tt.status); got != tt.want {
				t.Errorf("logLevelForStatus(%d) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestLoggingMiddleware_Fields(t *testing.T) {
	logs := captureLogs(t)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(LoggingMiddleware)
	router.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "192.168.1.100:54321"
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log as JSON: %v", err)
	}

	if entry["msg"] != "request completed" {
		t.Errorf("msg = %v, want request completed", entry["msg"])
	}
	for _, field := range []string{"request_id", "method", "path", "status", "duration_ms", "remote_addr"} {
		if _, ok := entry[field]; !ok {
			t.Errorf("missing expected field: %s", field)
		}
	}
	if entry["remote_addr"] != "192.168.1.100:54321" {
		t.Errorf("remote_addr = %v", entry["remote_addr"])
	}
	if strings.Contains(logs.String(), testAPIKey) {
		t.Error("log output contains the API key")
	}
}

func TestLoggingMiddleware_LogLevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, `"level":"INFO"`},
		{http.StatusBadRequest, `"level":"WARN"`},
		{http.StatusInternalServerError, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			logs := captureLogs(t)
			mw := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

			if !strings.Contains(logs.String(), tt.level) {
				t.Errorf("expected %s, got: %s", tt.level, logs.String())
			}
		})
	}
}

func TestRecoveryMiddleware_NoPanic(t *testing.T) {
	handler, called := customerEcho()
	mw := RecoveryMiddleware(handler)

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	if !*called {
		t.Error("handler was not called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRecoveryMiddleware_Panic(t *testing.T) {
	logs := captureLogs(t)
	mw := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong: db password=hunter2")
	}))

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
	if strings.Contains(w.Body.String(), "hunter2") {
		t.Error("panic details leaked into the response")
	}
	if !strings.Contains(logs.String(), "panic recovered") {
		t.Error("expected 'panic recovered' in log output")
	}
}
