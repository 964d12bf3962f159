// Package navigation decides, for the SPA shell, what should happen on a
// given path for a given session: render the page, redirect somewhere
// else, or wait for auth resolution. Decisions are pure functions of
// their inputs so every branch is testable without a router.
package navigation

import "strings"

const (
	PathLogin          = "/login"
	PathContactSupport = "/contact-support"
	PathRoot           = "/"
)

// Session is the authentication state a decision is evaluated against.
// Resolving mirrors the shell's "auth still loading" phase; while it is
// set no navigation is ever issued.
type Session struct {
	Resolving     bool
	Authenticated bool
	User          *User
}

type User struct {
	ID   string
	Role string
}

type Action string

const (
	ActionRender   Action = "render"
	ActionRedirect Action = "redirect"
	ActionWait     Action = "wait"
)

// Decision is the single outcome of one evaluation. From carries the
// originating path on a login redirect so it can be restored after
// sign-in; Replace marks the navigation as a history replace.
type Decision struct {
	Action  Action `json:"action"`
	To      string `json:"to,omitempty"`
	From    string `json:"from,omitempty"`
	Replace bool   `json:"replace,omitempty"`
}

// Guard evaluates the auth gate for a path. allowedRoles empty means the
// path carries no role restriction.
func Guard(session Session, allowedRoles []string, path string) Decision {
	if session.Resolving {
		return Decision{Action: ActionWait}
	}
	if !session.Authenticated || session.User == nil {
		return Decision{Action: ActionRedirect, To: PathLogin, From: path, Replace: true}
	}
	if len(allowedRoles) > 0 && !roleAllowed(session.User.Role, allowedRoles) {
		return Decision{Action: ActionRedirect, To: RoleHome(session.User.Role), Replace: true}
	}
	return Decision{Action: ActionRender}
}

func roleAllowed(role string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

// RoleHome is the role-specific landing page.
func RoleHome(role string) string {
	return "/" + role
}

// Restore decides whether a signed-in user sitting on /login should be
// sent back to where they were. Rules are evaluated in order; the first
// match wins and at most one navigation is issued per evaluation.
// Unauthenticated users on protected paths are left alone here; the
// guard owns that redirect.
func Restore(session Session, path, lastPath string) (Decision, bool) {
	if session.Resolving {
		return Decision{}, false
	}

	if session.User != nil {
		if path != PathLogin && path != PathContactSupport {
			return Decision{}, false
		}
		if path == PathLogin {
			to := RoleHome(session.User.Role)
			if lastPath != "" && lastPath != PathLogin {
				to = lastPath
			}
			return Decision{Action: ActionRedirect, To: to, Replace: true}, true
		}
		return Decision{}, false
	}

	return Decision{}, false
}

// PublicPath reports whether a path is reachable without a session:
// the login page, the support page, and the bare root. The guard is
// never consulted for these, so an anonymous visitor can actually
// reach the login form.
func PublicPath(path string) bool {
	switch path {
	case PathLogin, PathContactSupport, PathRoot:
		return true
	}
	return false
}

// RecordablePath reports whether a path qualifies as a "last
// authenticated path". Auth pages and the bare root never do.
func RecordablePath(path string) bool {
	switch path {
	case PathLogin, PathContactSupport, PathRoot, "":
		return false
	}
	return true
}

// RouteRoles maps a path to the roles allowed on it. Role home trees
// (/employee, /manager, /hr) are restricted to their own role, except
// that hr may enter any of them; every other path is unrestricted.
func RouteRoles(path string) []string {
	segment := path
	segment = strings.TrimPrefix(segment, "/")
	if idx := strings.IndexByte(segment, '/'); idx >= 0 {
		segment = segment[:idx]
	}
	switch segment {
	case "employee":
		return []string{"employee", "hr"}
	case "manager":
		return []string{"manager", "hr"}
	case "hr":
		return []string{"hr"}
	}
	return nil
}
