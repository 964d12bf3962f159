package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRelayForwardsAndAddsCORS(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST forwarded, got %s", r.Method)
		}
		if r.URL.Path != "/api/wfh/my-requests" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Custom") != "kept" {
			t.Errorf("expected headers forwarded")
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"a":1}` {
			t.Errorf("expected body forwarded, got %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	handler, err := New(backend.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/wfh/my-requests", strings.NewReader(`{"a":1}`))
	req.Header.Set("X-Custom", "kept")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected upstream status passed through, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected permissive origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,PUT,DELETE,OPTIONS,PATCH" {
		t.Fatalf("unexpected methods header %q", got)
	}
	if rec.Body.String() != `{"ok":true}` {
		t.Fatalf("expected body passed through, got %s", rec.Body.String())
	}
}

func TestRelayPreflight(t *testing.T) {
	// No backend at all: OPTIONS must never forward.
	handler, err := New("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/anything", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Headers") != "*" {
		t.Fatal("expected permissive headers on preflight")
	}
}

func TestRelayFailureIsWellFormed(t *testing.T) {
	handler, err := New("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/anything", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("CORS headers must survive failures")
	}

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("expected JSON body, got %s", rec.Body.String())
	}
	if payload["error"] != "Proxy error" {
		t.Fatalf("expected proxy error marker, got %v", payload)
	}
	if payload["details"] == "" {
		t.Fatal("expected failure details")
	}
}
