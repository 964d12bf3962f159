package leavehandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/leave"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type Handler struct {
	Service     *leave.Service
	Perms       middleware.PermissionStore
	Audit       *audit.Service
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *leave.Service, perms middleware.PermissionStore, auditSvc *audit.Service, idempotency *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balance", h.handleBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/options", h.handleOptions)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests", h.handleListMine)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/requests", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/requests/{requestID}/cancel", h.handleCancel)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Get("/approvals", h.handleListApprovals)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/calendar", h.handleCalendar)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/calendar/export", h.handleCalendarExport)
	})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	balance, err := h.Service.Balance(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to load leave balance", requestID)
		return
	}
	api.Success(w, balance, requestID)
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	available, disabled, err := h.Service.Options(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "options_failed", "failed to load leave options", requestID)
		return
	}
	api.Success(w, map[string]any{
		"available": available,
		"disabled":  disabled,
	}, requestID)
}

type submitRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if idempotencyKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, "leave.submit", idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", requestID)
			return
		}
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "idempotency_failed", "idempotency check failed", requestID)
			return
		}
		if found {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(stored)
			return
		}
	}

	var payload submitRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	validator := shared.NewValidator()
	validator.Required("type", payload.Type, "leave type is required")
	start, startOK := validator.Date("startDate", payload.StartDate)
	end, endOK := validator.Date("endDate", payload.EndDate)
	if validator.Reject(w, requestID) {
		return
	}
	if !startOK || !endOK {
		return
	}

	verdict, created, err := h.Service.Submit(r.Context(), user.UserID, leave.Category(payload.Type), start, end, payload.Reason)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_submit_failed", "failed to submit leave request", requestID)
		return
	}
	if !verdict.Valid {
		// Policy rejections are expected outcomes; the message is the
		// user-facing contract.
		api.Fail(w, http.StatusUnprocessableEntity, "policy_rejected", verdict.Error, requestID)
		return
	}

	h.record(r, user, "leave.request.submit", created.ID, created)

	if idempotencyKey != "" {
		envelope, err := json.Marshal(api.Envelope{Success: true, Data: created, RequestID: requestID})
		if err == nil {
			if err := h.Idempotency.Save(r.Context(), user.UserID, "leave.submit", idempotencyKey, requestHash, envelope); err != nil {
				slog.Warn("idempotency save failed", "err", err)
			}
		}
	}

	api.Created(w, created, requestID)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	requests, err := h.Service.ListMine(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", requestID)
		return
	}
	api.Success(w, requests, requestID)
}

func (h *Handler) handleListApprovals(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	status := r.URL.Query().Get("status")
	page := shared.ParsePagination(r, 50, 200)
	requests, err := h.Service.ListForApprover(r.Context(), user, status, page.Limit, page.Offset)
	if errors.Is(err, leave.ErrForbidden) {
		api.Fail(w, http.StatusForbidden, "forbidden", "approver role required", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", requestID)
		return
	}
	api.Success(w, requests, requestID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	id := chi.URLParam(r, "requestID")
	req, err := h.Service.Approve(r.Context(), user, id)
	if h.failDecision(w, err, requestID) {
		return
	}

	h.record(r, user, "leave.request.approve", id, req)
	api.Success(w, req, requestID)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Reason == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "a rejection reason is required", requestID)
		return
	}

	id := chi.URLParam(r, "requestID")
	req, err := h.Service.Reject(r.Context(), user, id, payload.Reason)
	if h.failDecision(w, err, requestID) {
		return
	}

	h.record(r, user, "leave.request.reject", id, req)
	api.Success(w, req, requestID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	id := chi.URLParam(r, "requestID")
	err := h.Service.Cancel(r.Context(), user.UserID, id)
	if errors.Is(err, leave.ErrInvalidState) {
		api.Fail(w, http.StatusConflict, "invalid_state", "only your own pending requests can be cancelled", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_cancel_failed", "failed to cancel leave request", requestID)
		return
	}

	h.record(r, user, "leave.request.cancel", id, nil)
	api.Success(w, map[string]string{"status": "cancelled"}, requestID)
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	from, to, ok := h.calendarWindow(w, r, requestID)
	if !ok {
		return
	}
	includePending := r.URL.Query().Get("includePending") == "true"

	entries, err := h.Service.Calendar(r.Context(), from, to, includePending)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "calendar_failed", "failed to load calendar", requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	from, to, ok := h.calendarWindow(w, r, requestID)
	if !ok {
		return
	}

	switch r.URL.Query().Get("format") {
	case "pdf":
		payload, err := h.Service.CalendarPDF(r.Context(), from, to)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export calendar", requestID)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="leave-calendar.pdf"`)
		_, _ = io.Copy(w, bytes.NewReader(payload))
	case "", "csv":
		payload, err := h.Service.CalendarCSV(r.Context(), from, to)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export calendar", requestID)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="leave-calendar.csv"`)
		_, _ = w.Write(payload)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_format", "format must be csv or pdf", requestID)
	}
}

func (h *Handler) calendarWindow(w http.ResponseWriter, r *http.Request, requestID string) (time.Time, time.Time, bool) {
	validator := shared.NewValidator()
	from, fromOK := validator.Date("from", r.URL.Query().Get("from"))
	to, toOK := validator.Date("to", r.URL.Query().Get("to"))
	if fromOK && toOK {
		validator.DateOrder("from", from, "to", to)
	}
	if validator.Reject(w, requestID) {
		return time.Time{}, time.Time{}, false
	}
	if !fromOK || !toOK {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// failDecision maps approve/reject service errors onto API responses.
func (h *Handler) failDecision(w http.ResponseWriter, err error, requestID string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", requestID)
	case errors.Is(err, leave.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "you cannot decide this request", requestID)
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "request is not pending", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "leave_decision_failed", "failed to update leave request", requestID)
	}
	return true
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, "leave_request", entityID, requestID, shared.ClientIP(r), details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
