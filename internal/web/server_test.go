package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seyedibu8791/signal-relay/internal/app"
)

func newTestServer() *Server {
	stats := app.NewStats("#signals:example.org", "#forwards:example.org", 180*time.Second)
	stats.Received.Store(7)
	stats.Forwarded.Store(4)
	stats.Dropped.Store(3)
	stats.Heartbeats.Store(11)
	return NewServer(0, stats)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer()
	rec := httptest.NewRecorder()
	server.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); body != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
}

func TestHandleStatus(t *testing.T) {
	server := newTestServer()
	rec := httptest.NewRecorder()
	server.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"#signals:example.org",
		"#forwards:example.org",
		"3m0s",
		"Received: 7",
		"Forwarded: 4",
		"Dropped: 3",
		"Heartbeats: 11",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("status page missing %q:\n%v", want, body)
		}
	}
}

func TestHandleStatusUnknownPath(t *testing.T) {
	server := newTestServer()
	rec := httptest.NewRecorder()
	server.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %v, want %v", rec.Code, http.StatusNotFound)
	}
}

func TestMetricsEndpointRegistered(t *testing.T) {
	server := newTestServer()
	rec := httptest.NewRecorder()
	server.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("metrics output missing default collectors")
	}
}
