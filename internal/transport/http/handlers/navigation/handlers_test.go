package navigationhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/navigation"
	"hrportal/internal/platform/lastpath"
	"hrportal/internal/platform/metrics"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
)

func newRouter(store lastpath.Store) chi.Router {
	r := chi.NewRouter()
	NewHandler(store, metrics.New()).RegisterRoutes(r)
	return r
}

func decide(t *testing.T, router chi.Router, path string, user *auth.UserContext) navigation.Decision {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/navigation/route?path="+path, nil)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope api.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("re-marshal failed: %v", err)
	}
	var decision navigation.Decision
	if err := json.Unmarshal(raw, &decision); err != nil {
		t.Fatalf("bad decision payload: %v", err)
	}
	return decision
}

func TestRouteAnonymousRedirectsToLogin(t *testing.T) {
	router := newRouter(lastpath.NewMemory())

	decision := decide(t, router, "/employee/leave", nil)
	if decision.Action != navigation.ActionRedirect || decision.To != "/login" {
		t.Fatalf("expected login redirect, got %+v", decision)
	}
	if decision.From != "/employee/leave" {
		t.Fatalf("expected originating path carried, got %q", decision.From)
	}
}

// The login form must render for the visitor it exists to serve; a
// guard pass here would redirect /login onto itself forever.
func TestRouteAnonymousLoginRenders(t *testing.T) {
	router := newRouter(lastpath.NewMemory())

	decision := decide(t, router, "/login", nil)
	if decision.Action != navigation.ActionRender {
		t.Fatalf("expected render, got %+v", decision)
	}
}

func TestRouteAnonymousPublicPathsRender(t *testing.T) {
	router := newRouter(lastpath.NewMemory())

	for _, path := range []string{"/contact-support", "/"} {
		decision := decide(t, router, path, nil)
		if decision.Action != navigation.ActionRender {
			t.Fatalf("expected %s to render while signed out, got %+v", path, decision)
		}
	}
}

func TestRouteRendersAndRecordsLastPath(t *testing.T) {
	store := lastpath.NewMemory()
	router := newRouter(store)
	user := &auth.UserContext{UserID: "u1", Role: auth.RoleEmployee}

	decision := decide(t, router, "/employee/leave", user)
	if decision.Action != navigation.ActionRender {
		t.Fatalf("expected render, got %+v", decision)
	}

	stored, err := store.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != "/employee/leave" {
		t.Fatalf("expected last path recorded, got %q", stored)
	}
}

func TestRouteRestoresFromLogin(t *testing.T) {
	store := lastpath.NewMemory()
	if err := store.Set(context.Background(), "u1", "/employee/requests"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	router := newRouter(store)
	user := &auth.UserContext{UserID: "u1", Role: auth.RoleEmployee}

	decision := decide(t, router, "/login", user)
	if decision.Action != navigation.ActionRedirect || decision.To != "/employee/requests" {
		t.Fatalf("expected restoration, got %+v", decision)
	}
	if !decision.Replace {
		t.Fatal("restoration should replace history")
	}
}

func TestRouteLoginWithoutLastPathGoesHome(t *testing.T) {
	router := newRouter(lastpath.NewMemory())
	user := &auth.UserContext{UserID: "u2", Role: auth.RoleManager}

	decision := decide(t, router, "/login", user)
	if decision.Action != navigation.ActionRedirect || decision.To != "/manager" {
		t.Fatalf("expected role home, got %+v", decision)
	}
}

func TestRouteRoleMismatch(t *testing.T) {
	router := newRouter(lastpath.NewMemory())
	user := &auth.UserContext{UserID: "u3", Role: auth.RoleEmployee}

	decision := decide(t, router, "/hr/audit", user)
	if decision.Action != navigation.ActionRedirect || decision.To != "/employee" {
		t.Fatalf("expected redirect to role home, got %+v", decision)
	}
}

// Auth pages are never recorded as restoration targets.
func TestRouteDoesNotRecordExcludedPaths(t *testing.T) {
	store := lastpath.NewMemory()
	router := newRouter(store)
	user := &auth.UserContext{UserID: "u4", Role: auth.RoleHR}

	decide(t, router, "/contact-support", user)

	stored, err := store.Get(context.Background(), "u4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != "" {
		t.Fatalf("expected nothing recorded, got %q", stored)
	}
}

func TestRouteRejectsRelativePath(t *testing.T) {
	router := newRouter(lastpath.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/navigation/route?path=employee", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
