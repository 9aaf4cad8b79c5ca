package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
)

func TestGenerateRequestIDUnique(t *testing.T) {
	a, b := generateRequestID(), generateRequestID()
	if a == "" || a == b {
		t.Errorf("want two distinct non-empty IDs, got %q and %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("ID length = %d, want 32 hex chars", len(a))
	}
}

func TestRequestIDThreadedThroughContext(t *testing.T) {
	var fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx, _ = r.Context().Value(logger.RequestIDKey).(string)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if fromCtx == "" {
		t.Fatal("request ID missing from context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != fromCtx {
		t.Errorf("response header ID %q != context ID %q", got, fromCtx)
	}
}

func TestRequestIDHonorsInbound(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set(RequestIDHeader, "upstream-trace-41")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "upstream-trace-41" {
		t.Errorf("inbound ID not echoed: got %q", got)
	}
}

func TestRequestIDRejectsOversizedInbound(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	oversized := strings.Repeat("x", maxInboundIDLen+1)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set(RequestIDHeader, oversized)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	got := rec.Header().Get(RequestIDHeader)
	if got == oversized {
		t.Error("oversized inbound ID should be replaced")
	}
	if got == "" {
		t.Error("replacement ID missing")
	}
}
