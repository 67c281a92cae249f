package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/preston-bernstein/scorekeeper-service/internal/http/requestutil"
	"github.com/preston-bernstein/scorekeeper-service/internal/logging"
	"github.com/preston-bernstein/scorekeeper-service/internal/metrics"
	"github.com/preston-bernstein/scorekeeper-service/internal/testutil"
)

func TestLoggingMiddlewareSetsRequestIDAndLogger(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	rec := metrics.NewRecorder()
	nextCalled := false

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if got := requestutil.RequestID(r); got != "abc-123" {
			t.Fatalf("expected incoming request id in context, got %q", got)
		}
		logging.FromContext(r.Context(), nil).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodPost, "/match/home/increment", nil)
	req.Header.Set(requestutil.HeaderRequestID, "abc-123")
	rr := testutil.ServeRequest(LoggingMiddleware(logger, rec, next), req)

	if !nextCalled {
		t.Fatalf("expected next handler to be called")
	}
	testutil.AssertStatus(t, rr, http.StatusTeapot)
	if got := rr.Header().Get(requestutil.HeaderRequestID); got != "abc-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	out := buf.String()
	if !strings.Contains(out, "inside handler") || !strings.Contains(out, "request_id=abc-123") {
		t.Fatalf("expected scoped logger with request id, got %q", out)
	}
	if !strings.Contains(out, "status_code=418") {
		t.Fatalf("expected completion log with status, got %q", out)
	}
}

func TestLoggingMiddlewareGeneratesRequestIDWhenInvalid(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := requestutil.RequestID(r); got == "" || got == "bad id" {
			t.Fatalf("expected generated request id, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/match", nil)
	req.Header.Set(requestutil.HeaderRequestID, "bad id")
	rr := testutil.ServeRequest(LoggingMiddleware(logger, nil, next), req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := rr.Header().Get(requestutil.HeaderRequestID); got == "" || got == "bad id" {
		t.Fatalf("expected sanitized X-Request-ID header, got %q", got)
	}
}

func TestLoggingMiddlewareNilLoggerUsesDefault(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	rr := testutil.Serve(LoggingMiddleware(nil, nil, next), http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestResponseWriterKeepsFirstStatusAndUnwraps(t *testing.T) {
	inner := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: inner, status: http.StatusOK}

	ww.WriteHeader(http.StatusCreated)
	ww.WriteHeader(http.StatusInternalServerError)

	if ww.status != http.StatusCreated {
		t.Fatalf("expected first status to stick, got %d", ww.status)
	}
	if ww.Unwrap() != inner {
		t.Fatalf("expected Unwrap to return the inner writer")
	}
	if err := http.NewResponseController(ww).Flush(); err != nil {
		t.Fatalf("expected flush through wrapper, got %v", err)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                       "",
		"/health":                "/health",
		"/match":                 "/match",
		"/match/home/increment":  "/match/:side/increment",
		"/match/away/name":       "/match/:side/name",
		"/match/settings/toggle": "/match/settings/toggle",
		"/match/reset?x=1":       "/match/reset",
		"/palettes":              "/palettes",
		"/match/home/explode":    "/match/:side/:action",
		"/match/home/x1":         "/match/:side/:action",
		"/match/visitors/reset":  "/match/:side/reset",
		"/games/today":           "/:unmatched",
		"/match/a/b/c":           "/:unmatched",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
