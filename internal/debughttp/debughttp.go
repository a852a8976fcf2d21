// Package debughttp serves the pipe's health and metrics endpoints.
package debughttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jmorran/stdoutchan"
)

// Health reports the pipe's current state.
type Health struct {
	Status           string  `json:"status"`
	UptimeSeconds    float64 `json:"uptimeSeconds"`
	StdoutQueueDepth int     `json:"stdoutQueueDepth"`
	StderrQueueDepth int     `json:"stderrQueueDepth"`
	Closed           bool    `json:"closed"`
}

// StateFunc returns the pipe state for the health endpoint.
type StateFunc func() Health

// NewRouter builds the debug router: correlation IDs on every request,
// GET /health for pipe state, /metrics for channel and runtime metrics.
func NewRouter(logger *zap.Logger, state StateFunc) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.HandleFunc("/health", HealthHandler(state)).Methods("GET")
	router.Handle("/metrics", stdoutchan.MetricsHandler())
	return router
}

// CorrelationIDMiddleware assigns each request a correlation ID (client-provided
// or generated), echoes it in the response header and enriches the logger.
func CorrelationIDMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			corrID := r.Header.Get("X-Correlation-ID")
			if corrID == "" {
				corrID = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), "correlation_id", corrID)
			w.Header().Set("X-Correlation-ID", corrID)

			logger := logger.With(zap.String("correlation_id", corrID))
			ctx = context.WithValue(ctx, "logger", logger)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HealthHandler serves the pipe state as JSON. Returns 503 once the channel
// has closed, so probes stop routing traffic to a draining process.
func HealthHandler(state StateFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := state()
		if h.Status == "" {
			h.Status = "ok"
		}
		code := http.StatusOK
		if h.Closed {
			h.Status = "shutting-down"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(h)
	}
}
