package leavehandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/leave"
	"hrportal/internal/transport/http/middleware"
)

type stubStore struct {
	balance leave.Balance
	created []leave.Request
}

func (s *stubStore) Balance(_ context.Context, _ string) (leave.Balance, error) {
	return s.balance, nil
}

func (s *stubStore) CreateRequest(_ context.Context, req leave.Request) (string, error) {
	s.created = append(s.created, req)
	return "req-1", nil
}

func (s *stubStore) GetRequest(_ context.Context, _ string) (leave.Request, error) {
	return leave.Request{}, leave.ErrNotFound
}

func (s *stubStore) ListRequestsForUser(_ context.Context, _ string, _, _ int) ([]leave.Request, error) {
	return nil, nil
}

func (s *stubStore) ListRequestsForUsers(_ context.Context, _ []string, _ string, _, _ int) ([]leave.Request, error) {
	return nil, nil
}

func (s *stubStore) ListAllRequests(_ context.Context, _ string, _, _ int) ([]leave.Request, error) {
	return nil, nil
}

func (s *stubStore) ApproveRequest(_ context.Context, _, _ string, _ []leave.Category) error {
	return nil
}

func (s *stubStore) RejectRequest(_ context.Context, _, _, _ string) error {
	return nil
}

func (s *stubStore) CancelRequest(_ context.Context, _, _ string) error {
	return leave.ErrInvalidState
}

func (s *stubStore) CalendarEntries(_ context.Context, _, _ time.Time, _ bool) ([]leave.CalendarEntry, error) {
	return nil, nil
}

type stubDirectory struct{}

func (stubDirectory) DirectReportIDs(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (stubDirectory) IsManagerOf(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (stubDirectory) ManagerUserID(_ context.Context, _ string) (string, error) {
	return "", nil
}

func newTestRouter(store *stubStore) chi.Router {
	svc := leave.NewService(store, stubDirectory{}, nil)
	svc.Now = func() time.Time {
		return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	}

	router := chi.NewRouter()
	NewHandler(svc, auth.Permissions{}, nil, nil).RegisterRoutes(router)
	return router
}

func doAs(router http.Handler, user auth.UserContext, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitPolicyRejectionMessage(t *testing.T) {
	store := &stubStore{balance: leave.Balance{
		leave.CategoryAnnual: {Allocated: 20, Used: 5, Remaining: 15},
	}}
	router := newTestRouter(store)

	body := `{"type":"annual","startDate":"2025-06-10","endDate":"2025-06-11","reason":"short"}`
	rec := doAs(router, auth.UserContext{UserID: "u1", Role: auth.RoleEmployee}, http.MethodPost, "/leave/requests", body)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if envelope.Success {
		t.Fatal("expected success=false")
	}
	if envelope.Error.Code != "policy_rejected" {
		t.Fatalf("expected policy_rejected, got %q", envelope.Error.Code)
	}
	want := "Leave reason must be at least 10 characters long"
	if envelope.Error.Message != want {
		t.Fatalf("expected %q, got %q", want, envelope.Error.Message)
	}
	if len(store.created) != 0 {
		t.Fatal("rejected request must not be persisted")
	}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	store := &stubStore{balance: leave.Balance{
		leave.CategoryAnnual: {Allocated: 20, Used: 5, Remaining: 15},
	}}
	router := newTestRouter(store)

	body := `{"type":"annual","startDate":"2025-06-10","endDate":"2025-06-12","reason":"long planned family trip"}`
	rec := doAs(router, auth.UserContext{UserID: "u1", Role: auth.RoleEmployee}, http.MethodPost, "/leave/requests", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one persisted request, got %d", len(store.created))
	}
	if store.created[0].Days != 3 {
		t.Fatalf("expected 3 days, got %d", store.created[0].Days)
	}
}

func TestSubmitRejectsMalformedDates(t *testing.T) {
	store := &stubStore{}
	router := newTestRouter(store)

	body := `{"type":"annual","startDate":"10/06/2025","endDate":"2025-06-12","reason":"long planned family trip"}`
	rec := doAs(router, auth.UserContext{UserID: "u1", Role: auth.RoleEmployee}, http.MethodPost, "/leave/requests", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestApprovalsForbiddenForEmployees(t *testing.T) {
	router := newTestRouter(&stubStore{})

	rec := doAs(router, auth.UserContext{UserID: "u1", Role: auth.RoleEmployee}, http.MethodGet, "/leave/approvals", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 from permission check, got %d", rec.Code)
	}
}

func TestCancelConflictOnNonPending(t *testing.T) {
	router := newTestRouter(&stubStore{})

	rec := doAs(router, auth.UserContext{UserID: "u1", Role: auth.RoleEmployee}, http.MethodPost, "/leave/requests/r9/cancel", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
