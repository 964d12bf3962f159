package navigationhandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/navigation"
	"hrportal/internal/platform/lastpath"
	"hrportal/internal/platform/metrics"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
)

// Handler serves routing decisions to the SPA shell. The endpoint is
// deliberately open: for an anonymous caller the correct decision is a
// redirect to /login, not a 401.
type Handler struct {
	LastPaths lastpath.Store
	Metrics   *metrics.Collector
}

func NewHandler(lastPaths lastpath.Store, collector *metrics.Collector) *Handler {
	return &Handler{LastPaths: lastPaths, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/navigation/route", h.handleRoute)
}

func (h *Handler) handleRoute(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	path := r.URL.Query().Get("path")
	if path == "" || path[0] != '/' {
		api.Fail(w, http.StatusBadRequest, "invalid_path", "path query parameter must be an absolute path", requestID)
		return
	}

	session := navigation.Session{}
	userID := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		session.Authenticated = true
		session.User = &navigation.User{ID: user.UserID, Role: user.Role}
		userID = user.UserID
	}

	lastPath := ""
	if userID != "" {
		stored, err := h.LastPaths.Get(r.Context(), userID)
		if err != nil {
			slog.Warn("last path read failed", "err", err)
		} else {
			lastPath = stored
		}
	}

	decision, restored := navigation.Restore(session, path, lastPath)
	switch {
	case restored:
	case session.User == nil && navigation.PublicPath(path):
		// Public pages render for anonymous visitors; handing them to
		// the guard would bounce /login back onto itself.
		decision = navigation.Decision{Action: navigation.ActionRender}
	default:
		decision = navigation.Guard(session, navigation.RouteRoles(path), path)
	}

	// Rendering a protected page makes it the new restoration target.
	// The write lives here in routing infrastructure, not in the
	// decision functions.
	if decision.Action == navigation.ActionRender && userID != "" && navigation.RecordablePath(path) {
		if err := h.LastPaths.Set(r.Context(), userID, path); err != nil {
			slog.Warn("last path write failed", "err", err)
		}
	}

	if h.Metrics != nil {
		h.Metrics.RecordNavigation(decision.Action == navigation.ActionRedirect)
	}

	api.Success(w, decision, requestID)
}
