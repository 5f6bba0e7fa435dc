package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/cbm-calculator/internal/calculator"
	"github.com/eugenenazirov/cbm-calculator/internal/storage"
)

func TestLoggingMiddlewareLevels(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		status  int
		level   zapcore.Level
		message string
	}{
		{name: "calculation", path: "/api/calculate", status: http.StatusOK, level: zapcore.InfoLevel, message: "request completed"},
		{name: "health check", path: "/api/health", status: http.StatusOK, level: zapcore.DebugLevel, message: "request completed"},
		{name: "client error", path: "/api/calculate", status: http.StatusBadRequest, level: zapcore.InfoLevel, message: "request completed"},
		{name: "server error", path: "/api/calculate", status: http.StatusServiceUnavailable, level: zapcore.ErrorLevel, message: "request failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			handler := loggingMiddleware(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))

			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			req = req.WithContext(contextWithRequestID(req.Context(), "req-1"))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}
			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected one log entry, got %d", len(entries))
			}
			entry := entries[0]
			if entry.Level != tc.level || entry.Message != tc.message {
				t.Fatalf("expected %s %q, got %s %q", tc.level, tc.message, entry.Level, entry.Message)
			}
			fields := entry.ContextMap()
			if fields["request_id"] != "req-1" || fields["route"] != "unmatched" || fields["status"] != int64(tc.status) {
				t.Fatalf("unexpected log fields %v", fields)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := recoveryMiddleware(zap.New(core), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", nil)
	req = req.WithContext(contextWithRequestID(req.Context(), "req-2"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal error") {
		t.Fatalf("expected JSON error body, got %s", rec.Body.String())
	}
	recovered := logs.FilterMessage("panic recovered").All()
	if len(recovered) != 1 || recovered[0].ContextMap()["request_id"] != "req-2" {
		t.Fatalf("expected panic to be logged with request ID, got %v", logs.All())
	}
}

func TestResponseRecorderWriteHeader(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &responseRecorder{ResponseWriter: underlying}
	rec.WriteHeader(http.StatusTeapot)

	if rec.status != http.StatusTeapot {
		t.Fatalf("expected status to be recorded")
	}
	if underlying.Code != http.StatusTeapot {
		t.Fatalf("expected status to propagate to ResponseWriter")
	}
}

func TestWithRateLimiterOptionAppliesLimiter(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block request, got %d", rec.Code)
	}
}

func TestWithRateLimitDisablesLimiterWhenZero(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}), WithRateLimit(0, 0))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected limiter to be disabled, got %d", rec.Code)
	}
}

func TestWithRateLimitEnforcesLimit(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimit(1, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req.Clone(req.Context()))
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block second request, got %d", rec2.Code)
	}
}

func TestGeneratedRequestIDIsUUID(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimit(0, 0))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	id := rec.Header().Get("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected generated request ID to be a UUID, got %q: %v", id, err)
	}
}

func TestRoutePattern(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	if got := routePattern(req); got != "unmatched" {
		t.Fatalf("expected unmatched, got %s", got)
	}

	var seen string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pallets", func(http.ResponseWriter, *http.Request) {})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		seen = routePattern(r)
	})
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/pallets", nil))
	if seen != "GET /api/pallets" {
		t.Fatalf("expected matched pattern, got %q", seen)
	}
}

func newTestRouter(t *testing.T, opts ...RouterOption) http.Handler {
	t.Helper()

	store := storage.NewMemoryStorage()
	calc := calculator.New()
	handler := NewHandler(calc, store)
	logger := zaptest.NewLogger(t)
	return NewRouter(handler, logger, opts...)
}
