package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestSetupDisabledReturnsNoHandler(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("expected no error when disabled, got %v", err)
	}
	if rec == nil {
		t.Fatalf("expected recorder")
	}
	if handler != nil {
		t.Fatalf("expected nil handler when disabled")
	}
	if shutdown == nil {
		t.Fatalf("expected shutdown function")
	}
}

func TestSetupEnabledExportsMatchMetrics(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec == nil || handler == nil || shutdown == nil {
		t.Fatalf("expected recorder, handler and shutdown")
	}
	defer func() { _ = shutdown(context.Background()) }()

	rec.RecordHTTPRequest("GET", "/match", 200, time.Millisecond)
	rec.RecordMutation("increment", "home", true)
	rec.RecordMutation("decrement", "away", false)
	rec.RecordEventPublish("match.changed", nil)
	rec.RecordEventPublish("match.changed", errors.New("closed"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rr.Body.String()
	for _, want := range []string{
		"http_requests_total",
		"match_mutations_total",
		"match_events_published_total",
		"match_event_publish_errors_total",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in exposition", want)
		}
	}
	if got := rec.Mutations("increment"); got != 1 {
		t.Fatalf("expected in-memory counter alongside otel, got %d", got)
	}
}

func TestSetupPropagatesFactoryErrors(t *testing.T) {
	origProm, origOTLP, origInst := promReaderFactory, otlpReaderFactory, instrumentFactory
	t.Cleanup(func() {
		promReaderFactory, otlpReaderFactory, instrumentFactory = origProm, origOTLP, origInst
	})

	promReaderFactory = func() (sdkmetric.Reader, http.Handler, error) {
		return nil, nil, errors.New("prom failed")
	}
	if _, _, _, err := Setup(context.Background(), TelemetryConfig{Enabled: true}); err == nil {
		t.Fatalf("expected prometheus factory error")
	}

	promReaderFactory = origProm
	otlpReaderFactory = func(context.Context, string, bool) (sdkmetric.Reader, error) {
		return nil, errors.New("otlp failed")
	}
	if _, _, _, err := Setup(context.Background(), TelemetryConfig{Enabled: true, OtlpEndpoint: "collector:4318"}); err == nil {
		t.Fatalf("expected otlp factory error")
	}
}
