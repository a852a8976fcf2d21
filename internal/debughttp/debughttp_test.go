package debughttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func testState(closed bool) StateFunc {
	return func() Health {
		return Health{
			UptimeSeconds:    1.5,
			StdoutQueueDepth: 3,
			StderrQueueDepth: 0,
			Closed:           closed,
		}
	}
}

// TestHealthHandler_OK verifies that a live pipe reports 200 with its state.
func TestHealthHandler_OK(t *testing.T) {
	router := NewRouter(zap.NewNop(), testState(false))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var h Health
	if err := json.NewDecoder(w.Body).Decode(&h); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if h.Status != "ok" {
		t.Errorf("status field = %q, want ok", h.Status)
	}
	if h.StdoutQueueDepth != 3 {
		t.Errorf("stdoutQueueDepth = %d, want 3", h.StdoutQueueDepth)
	}
}

// TestHealthHandler_ShuttingDown verifies that a closed pipe reports 503.
func TestHealthHandler_ShuttingDown(t *testing.T) {
	router := NewRouter(zap.NewNop(), testState(true))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var h Health
	if err := json.NewDecoder(w.Body).Decode(&h); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if h.Status != "shutting-down" {
		t.Errorf("status field = %q, want shutting-down", h.Status)
	}
}

// TestCorrelationIDMiddleware_GeneratesID verifies that a missing correlation
// ID is generated and echoed.
func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	router := NewRouter(zap.NewNop(), testState(false))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("X-Correlation-ID header missing")
	}
}

// TestCorrelationIDMiddleware_EchoesProvidedID verifies that a client-provided
// correlation ID is preserved.
func TestCorrelationIDMiddleware_EchoesProvidedID(t *testing.T) {
	router := NewRouter(zap.NewNop(), testState(false))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Correlation-ID", "client-provided-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "client-provided-id" {
		t.Errorf("X-Correlation-ID = %q, want client-provided-id", got)
	}
}

// TestNewRouter_ServesMetrics verifies that /metrics is mounted and serves
// Prometheus exposition format.
func TestNewRouter_ServesMetrics(t *testing.T) {
	router := NewRouter(zap.NewNop(), testState(false))

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("/metrics response should contain runtime collector output")
	}
}

// TestHealthHandler_MethodNotAllowed verifies that non-GET requests to /health
// are rejected by the route method matcher.
func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	router := NewRouter(zap.NewNop(), testState(false))

	req := httptest.NewRequest("POST", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
