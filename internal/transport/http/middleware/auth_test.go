package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrportal/internal/domain/auth"
)

type fakeSessions struct {
	valid bool
}

func (f fakeSessions) SessionValid(_ context.Context, _, _ string) (bool, error) {
	return f.valid, nil
}

func serveWithAuth(t *testing.T, secret string, sessions SessionChecker, header string) (auth.UserContext, bool) {
	t.Helper()
	var got auth.UserContext
	var ok bool
	handler := Auth(secret, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/requests", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got, ok
}

func TestAuthAttachesIdentity(t *testing.T) {
	token, err := auth.GenerateToken("secret", auth.Claims{UserID: "u1", Role: auth.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, ok := serveWithAuth(t, "secret", fakeSessions{valid: true}, "Bearer "+token)
	if !ok {
		t.Fatal("expected identity attached")
	}
	if user.UserID != "u1" || user.Role != auth.RoleEmployee {
		t.Fatalf("unexpected identity %+v", user)
	}
	if user.Token != token {
		t.Fatal("expected raw token kept for logout")
	}
}

func TestAuthPassThroughWithoutCredentials(t *testing.T) {
	if _, ok := serveWithAuth(t, "secret", fakeSessions{valid: true}, ""); ok {
		t.Fatal("expected anonymous request")
	}
}

func TestAuthIgnoresBadToken(t *testing.T) {
	if _, ok := serveWithAuth(t, "secret", fakeSessions{valid: true}, "Bearer not-a-token"); ok {
		t.Fatal("expected anonymous request")
	}
}

// A structurally valid token with a revoked session stays anonymous.
func TestAuthRejectsRevokedSession(t *testing.T) {
	token, err := auth.GenerateToken("secret", auth.Claims{UserID: "u1", Role: auth.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := serveWithAuth(t, "secret", fakeSessions{valid: false}, "Bearer "+token); ok {
		t.Fatal("expected anonymous request after revocation")
	}
}
