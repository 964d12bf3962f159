package wfhhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/wfh"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
)

type Handler struct {
	Client *wfh.Client
	Perms  middleware.PermissionStore
}

func NewHandler(client *wfh.Client, perms middleware.PermissionStore) *Handler {
	return &Handler{Client: client, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermWFHRead, h.Perms)).Get("/wfh/requests", h.handleMyRequests)
}

// handleMyRequests proxies the caller's WFH records from the legacy
// system. The client already degrades every failure to an empty list,
// so this handler cannot fail on upstream trouble.
func (h *Handler) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	requests := h.Client.GetMyRequests(r.Context(), user.Token)
	api.Success(w, requests, requestID)
}
