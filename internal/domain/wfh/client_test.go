package wfh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type countingMetrics struct {
	failures int
}

func (m *countingMetrics) RecordUpstreamFailure() { m.failures++ }

func TestClientFetchesAndNormalizes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token forwarded, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"wfh_requests": [{"wfh_id": "w1", "wfh_type": "Half Day", "status": "Approved"}]}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, time.Second, nil)
	got := client.GetMyRequests(context.Background(), "tok")
	if len(got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got))
	}
	if got[0].ID != "w1" || got[0].WFHType != TypeHalfDay || got[0].Status != "approved" {
		t.Fatalf("unexpected normalization: %+v", got[0])
	}
}

func TestClientDegradesToEmpty(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer upstream.Close()

	metrics := &countingMetrics{}
	client := NewClient(upstream.URL, time.Second, metrics)

	got := client.GetMyRequests(context.Background(), "tok")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
	if metrics.failures != 1 {
		t.Fatalf("expected one recorded failure, got %d", metrics.failures)
	}
}

func TestClientWithoutBaseURL(t *testing.T) {
	client := NewClient("", time.Second, nil)
	if got := client.GetMyRequests(context.Background(), ""); got == nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}
