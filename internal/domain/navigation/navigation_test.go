package navigation

import "testing"

func authedSession(role string) Session {
	return Session{Authenticated: true, User: &User{ID: "u1", Role: role}}
}

func TestGuardWaitsWhileResolving(t *testing.T) {
	session := Session{Resolving: true, Authenticated: true, User: &User{ID: "u1", Role: "hr"}}

	decision := Guard(session, []string{"employee"}, "/employee/leave")
	if decision.Action != ActionWait {
		t.Fatalf("expected wait, got %v", decision)
	}
	if decision.To != "" {
		t.Fatal("resolving must never navigate")
	}
}

func TestGuardRedirectsUnauthenticated(t *testing.T) {
	decision := Guard(Session{}, nil, "/employee/leave")
	if decision.Action != ActionRedirect || decision.To != PathLogin {
		t.Fatalf("expected redirect to /login, got %v", decision)
	}
	if decision.From != "/employee/leave" {
		t.Fatalf("expected originating path to be carried, got %q", decision.From)
	}
	if !decision.Replace {
		t.Fatal("login redirect should replace history")
	}
}

// Authenticated with a nil user is treated as unauthenticated.
func TestGuardNilUser(t *testing.T) {
	decision := Guard(Session{Authenticated: true}, nil, "/manager")
	if decision.Action != ActionRedirect || decision.To != PathLogin {
		t.Fatalf("expected redirect to /login, got %v", decision)
	}
}

func TestGuardRoleMismatchRedirectsHome(t *testing.T) {
	decision := Guard(authedSession("employee"), []string{"manager"}, "/manager/approvals")
	if decision.Action != ActionRedirect || decision.To != "/employee" {
		t.Fatalf("expected redirect to role home, got %v", decision)
	}
}

func TestGuardAllows(t *testing.T) {
	if decision := Guard(authedSession("manager"), []string{"manager"}, "/manager"); decision.Action != ActionRender {
		t.Fatalf("expected render, got %v", decision)
	}
	// No restriction means any authenticated user passes.
	if decision := Guard(authedSession("employee"), nil, "/settings"); decision.Action != ActionRender {
		t.Fatalf("expected render, got %v", decision)
	}
}

func TestRestoreNoopWhileResolving(t *testing.T) {
	session := Session{Resolving: true, User: &User{ID: "u1", Role: "employee"}}
	if _, ok := Restore(session, PathLogin, "/employee/leave"); ok {
		t.Fatal("resolving must be a no-op")
	}
}

func TestRestoreNoopOnProtectedPath(t *testing.T) {
	if _, ok := Restore(authedSession("employee"), "/employee/leave", "/employee"); ok {
		t.Fatal("already on a protected page, no navigation")
	}
}

func TestRestoreToLastPath(t *testing.T) {
	decision, ok := Restore(authedSession("employee"), PathLogin, "/employee/leave")
	if !ok {
		t.Fatal("expected a navigation")
	}
	if decision.Action != ActionRedirect || decision.To != "/employee/leave" {
		t.Fatalf("expected redirect to last path, got %v", decision)
	}
	if !decision.Replace {
		t.Fatal("restoration should replace history")
	}
}

// No stored path: fall back to the role home, exactly one navigation.
func TestRestoreFallsBackToRoleHome(t *testing.T) {
	decision, ok := Restore(authedSession("manager"), PathLogin, "")
	if !ok {
		t.Fatal("expected a navigation")
	}
	if decision.To != "/manager" {
		t.Fatalf("expected /manager, got %q", decision.To)
	}
}

// A stored path of /login would loop; fall back to the role home.
func TestRestoreIgnoresLoginAsLastPath(t *testing.T) {
	decision, ok := Restore(authedSession("hr"), PathLogin, PathLogin)
	if !ok {
		t.Fatal("expected a navigation")
	}
	if decision.To != "/hr" {
		t.Fatalf("expected /hr, got %q", decision.To)
	}
}

func TestRestoreUnauthenticatedDefersToGuard(t *testing.T) {
	if _, ok := Restore(Session{}, "/employee/leave", ""); ok {
		t.Fatal("guard owns the unauthenticated redirect")
	}
	if _, ok := Restore(Session{}, PathLogin, ""); ok {
		t.Fatal("unauthenticated on /login stays put")
	}
}

func TestRestoreContactSupportStaysPut(t *testing.T) {
	if _, ok := Restore(authedSession("employee"), PathContactSupport, "/employee"); ok {
		t.Fatal("contact-support is reachable while signed in")
	}
}

func TestRecordablePath(t *testing.T) {
	for _, path := range []string{PathLogin, PathContactSupport, PathRoot, ""} {
		if RecordablePath(path) {
			t.Fatalf("%q must not be recorded", path)
		}
	}
	if !RecordablePath("/employee/leave") {
		t.Fatal("protected paths are recordable")
	}
}

func TestPublicPath(t *testing.T) {
	for _, path := range []string{PathLogin, PathContactSupport, PathRoot} {
		if !PublicPath(path) {
			t.Fatalf("%q must be reachable without a session", path)
		}
	}
	for _, path := range []string{"/employee/leave", "/hr", ""} {
		if PublicPath(path) {
			t.Fatalf("%q must not be public", path)
		}
	}
}

func TestRouteRoles(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"/employee/leave", []string{"employee", "hr"}},
		{"/manager", []string{"manager", "hr"}},
		{"/hr/audit", []string{"hr"}},
		{"/settings", nil},
		{"/", nil},
	}
	for _, tc := range cases {
		got := RouteRoles(tc.path)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.path, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: expected %v, got %v", tc.path, tc.want, got)
			}
		}
	}
}
