package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/PratikDhanave/telemetry-ingest-service/internal/config"
	"github.com/PratikDhanave/telemetry-ingest-service/internal/store"
)

////////////////////////////////////////////////////////////////////////////////
// ROUTER TEST SUITE
//
// These tests drive the full stack in-process:
//
//   Client → gin router → telemetry key → handler → SQLite store → response
//
////////////////////////////////////////////////////////////////////////////////

func newTestServer(t *testing.T, cfg config.Config) (*gin.Engine, *store.SQLiteStore) {
	t.Helper()

	st, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(st.Close)

	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 102400
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(cfg, st, logger, prometheus.NewRegistry()), st
}

// do performs a request against the router and returns status and body.
func do(t *testing.T, r http.Handler, method, path, key string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Telemetry-Key", key)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr.Code, rr.Body.Bytes()
}

// doomEvent builds the canonical request body with the given id.
func doomEvent(id string) map[string]any {
	return map[string]any{
		"metaData": map[string]any{
			"id":        id,
			"eventType": "kill",
			"gameInfo":  map[string]any{"name": "Doom", "type": "FPS", "version": "1.0"},
			"timeStamp": "2024-01-01T00:00:00Z",
		},
		"eventPayload": map[string]any{"enemy": "imp"},
	}
}

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", b, err)
	}
	return m
}

////////////////////////////////////////////////////////////////////////////////
// HEALTH & READINESS TESTS
////////////////////////////////////////////////////////////////////////////////

func TestHealth_ReturnsOK(t *testing.T) {
	r, _ := newTestServer(t, config.Config{})
	s, _ := do(t, r, http.MethodGet, "/health", "", nil)
	if s != http.StatusOK {
		t.Fatalf("health expected 200 got %d", s)
	}
}

func TestReady_ReturnsOK(t *testing.T) {
	r, _ := newTestServer(t, config.Config{})
	s, _ := do(t, r, http.MethodGet, "/ready", "", nil)
	if s != http.StatusOK {
		t.Fatalf("ready expected 200 got %d", s)
	}
}

func TestReady_UnavailableWhenStoreClosed(t *testing.T) {
	r, st := newTestServer(t, config.Config{})
	st.Close()

	s, b := do(t, r, http.MethodGet, "/ready", "", nil)
	if s != http.StatusServiceUnavailable {
		t.Fatalf("ready expected 503 got %d", s)
	}
	if decode(t, b)["status"] != "not_ready" {
		t.Fatalf("unexpected body %s", b)
	}
}

////////////////////////////////////////////////////////////////////////////////
// EVENTS CONTRACT TESTS
////////////////////////////////////////////////////////////////////////////////

func TestEvents_UnauthorizedWithoutKey(t *testing.T) {
	r, _ := newTestServer(t, config.Config{})

	s, b := do(t, r, http.MethodPost, "/api/telemetry/events", "", doomEvent("abc"))
	if s != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", s)
	}
	if decode(t, b)["error"] != "Unauthorized" {
		t.Fatalf("unexpected body %s", b)
	}
}

func TestEvents_CreatedWithKey(t *testing.T) {
	r, _ := newTestServer(t, config.Config{})

	s, b := do(t, r, http.MethodPost, "/api/telemetry/events", "valid-key", doomEvent("abc"))
	if s != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", s, b)
	}
	if decode(t, b)["status"] != "Event ingested" {
		t.Fatalf("unexpected body %s", b)
	}
}

func TestEvents_BadRequestOnIncompleteMetadata(t *testing.T) {
	r, _ := newTestServer(t, config.Config{})

	payload := map[string]any{
		"metaData":     map[string]any{"eventType": "kill", "gameInfo": map[string]any{}},
		"eventPayload": map[string]any{},
	}
	s, b := do(t, r, http.MethodPost, "/api/telemetry/events", "valid", payload)
	if s != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", s)
	}
	if got := decode(t, b)["errorMessage"]; got != "Argument `gameName` is missing." {
		t.Fatalf("unexpected errorMessage %v", got)
	}
}

////////////////////////////////////////////////////////////////////////////////
// CORE SYSTEM BEHAVIOR TESTS
////////////////////////////////////////////////////////////////////////////////

// A repeated id is never a silent success.
func TestIdempotency_DuplicateIsRejectedByStore(t *testing.T) {
	r, _ := newTestServer(t, config.Config{})

	s, _ := do(t, r, http.MethodPost, "/api/telemetry/events", "valid", doomEvent("dup-1"))
	if s != http.StatusCreated {
		t.Fatalf("first submit expected 201 got %d", s)
	}

	s, b := do(t, r, http.MethodPost, "/api/telemetry/events", "valid", doomEvent("dup-1"))
	if s != http.StatusInternalServerError {
		t.Fatalf("second submit expected 500 got %d", s)
	}
	if got := decode(t, b)["errorMessage"]; got != "Database error 1555" {
		t.Fatalf("unexpected errorMessage %v", got)
	}
}

func TestEvents_EnforcedKeys(t *testing.T) {
	r, _ := newTestServer(t, config.Config{TelemetryKeys: []string{"game-client-key"}})

	if s, _ := do(t, r, http.MethodPost, "/api/telemetry/events", "guess", doomEvent("k-1")); s != http.StatusUnauthorized {
		t.Fatalf("unknown key expected 401 got %d", s)
	}
	if s, _ := do(t, r, http.MethodPost, "/api/telemetry/events", "game-client-key", doomEvent("k-1")); s != http.StatusCreated {
		t.Fatalf("configured key expected 201 got %d", s)
	}
}

func TestMetrics_ExposesIngestCounters(t *testing.T) {
	r, _ := newTestServer(t, config.Config{})

	do(t, r, http.MethodPost, "/api/telemetry/events", "valid", doomEvent("m-1"))

	s, b := do(t, r, http.MethodGet, "/metrics", "", nil)
	if s != http.StatusOK {
		t.Fatalf("metrics expected 200 got %d", s)
	}
	if !strings.Contains(string(b), `telemetry_ingest_events_total{outcome="ingested"} 1`) {
		t.Fatalf("ingest counter missing from exposition:\n%s", b)
	}
}
