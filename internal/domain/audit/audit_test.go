package audit

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// The timestamp is a concrete time.Time, so consumers can compare and
// format it without type assertions.
func TestEventTimestampEncoding(t *testing.T) {
	evt := Event{
		ID:        "e1",
		Action:    "leave.request.approve",
		CreatedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
	}

	if evt.CreatedAt.IsZero() {
		t.Fatal("expected a set timestamp")
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(payload), `"createdAt":"2025-06-01T09:30:00Z"`) {
		t.Fatalf("expected RFC3339 timestamp, got %s", payload)
	}
}

func TestBuildBaseQueryFilters(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{})
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
	if !strings.HasSuffix(query, "WHERE 1=1") {
		t.Fatalf("unexpected base query: %s", query)
	}

	query, args = buildBaseQuery("SELECT COUNT(1)", Filter{
		Action:     "leave.request.approve",
		EntityType: "leave_request",
		ActorID:    "u1",
	})
	if len(args) != 3 {
		t.Fatalf("expected three args, got %v", args)
	}
	for _, clause := range []string{"action = $1", "entity_type = $2", "actor_user_id = $3"} {
		if !strings.Contains(query, clause) {
			t.Fatalf("expected %q in query: %s", clause, query)
		}
	}
}
