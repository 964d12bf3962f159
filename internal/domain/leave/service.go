package leave

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/notifications"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
)

type Service struct {
	Store  StoreAPI
	Users  UserDirectory
	Notify *notifications.Service

	// Now is the clock used by the advance-notice rules; tests pin it.
	Now func() time.Time
}

func NewService(store StoreAPI, users UserDirectory, notify *notifications.Service) *Service {
	return &Service{Store: store, Users: users, Notify: notify, Now: time.Now}
}

func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	return s.Store.Balance(ctx, userID)
}

// Options returns the selectable leave types for the user's current
// balance, plus the reason each remaining catalog type is unavailable.
func (s *Service) Options(ctx context.Context, userID string) ([]TypeOption, map[Category]string, error) {
	balance, err := s.Store.Balance(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	available := AvailableTypes(balance)
	disabled := map[Category]string{}
	for _, option := range typeCatalog {
		if TypeDisabled(option.Value, balance) {
			disabled[option.Value] = DisabledReason(option.Value)
		}
	}
	return available, disabled, nil
}

// Submit validates a proposed request against the policy chain and, if
// it passes, persists it as pending and notifies the user's manager.
// An invalid verdict is a normal outcome, not an error.
func (s *Service) Submit(ctx context.Context, userID string, cat Category, start, end time.Time, reason string) (Verdict, Request, error) {
	balance, err := s.Store.Balance(ctx, userID)
	if err != nil {
		return Verdict{}, Request{}, err
	}

	verdict := Validate(cat, start, end, balance, reason, s.Now())
	if !verdict.Valid {
		return verdict, Request{}, nil
	}

	days, err := CalculateDays(start, end)
	if err != nil {
		return Verdict{}, Request{}, err
	}

	req := Request{
		UserID:    userID,
		Type:      cat,
		StartDate: start,
		EndDate:   end,
		Days:      days,
		Reason:    reason,
	}
	id, err := s.Store.CreateRequest(ctx, req)
	if err != nil {
		return Verdict{}, Request{}, err
	}
	req.ID = id
	req.Status = StatusPending

	s.notifyManager(ctx, userID, notifications.TypeLeaveSubmitted,
		"Leave request submitted",
		fmt.Sprintf("A %s leave request for %d day(s) is awaiting review.", cat, days))

	return verdict, req, nil
}

func (s *Service) ListMine(ctx context.Context, userID string, limit, offset int) ([]Request, error) {
	return s.Store.ListRequestsForUser(ctx, userID, limit, offset)
}

// ListForApprover returns the requests the caller may act on: managers
// see their direct reports, hr sees everyone.
func (s *Service) ListForApprover(ctx context.Context, user auth.UserContext, status string, limit, offset int) ([]Request, error) {
	switch user.Role {
	case auth.RoleHR:
		return s.Store.ListAllRequests(ctx, status, limit, offset)
	case auth.RoleManager:
		reportIDs, err := s.Users.DirectReportIDs(ctx, user.UserID)
		if err != nil {
			return nil, err
		}
		if len(reportIDs) == 0 {
			return nil, nil
		}
		return s.Store.ListRequestsForUsers(ctx, reportIDs, status, limit, offset)
	default:
		return nil, ErrForbidden
	}
}

func (s *Service) Approve(ctx context.Context, user auth.UserContext, requestID string) (Request, error) {
	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if err := s.canDecide(ctx, user, req); err != nil {
		return Request{}, err
	}

	if err := s.Store.ApproveRequest(ctx, requestID, user.UserID, DeductionTypes(req.Type)); err != nil {
		return Request{}, err
	}

	s.notifyUser(ctx, req.UserID, notifications.TypeLeaveApproved,
		"Leave request approved",
		fmt.Sprintf("Your %s leave request (%d day(s)) has been approved.", req.Type, req.Days))

	return s.Store.GetRequest(ctx, requestID)
}

func (s *Service) Reject(ctx context.Context, user auth.UserContext, requestID, rejectionReason string) (Request, error) {
	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if err := s.canDecide(ctx, user, req); err != nil {
		return Request{}, err
	}

	if err := s.Store.RejectRequest(ctx, requestID, user.UserID, rejectionReason); err != nil {
		return Request{}, err
	}

	s.notifyUser(ctx, req.UserID, notifications.TypeLeaveRejected,
		"Leave request rejected",
		fmt.Sprintf("Your %s leave request was rejected: %s", req.Type, rejectionReason))

	return s.Store.GetRequest(ctx, requestID)
}

func (s *Service) Cancel(ctx context.Context, userID, requestID string) error {
	return s.Store.CancelRequest(ctx, requestID, userID)
}

// canDecide enforces who may approve or reject: hr always, a manager
// only for direct reports, and nobody for their own request.
func (s *Service) canDecide(ctx context.Context, user auth.UserContext, req Request) error {
	if req.UserID == user.UserID {
		return ErrForbidden
	}
	switch user.Role {
	case auth.RoleHR:
		return nil
	case auth.RoleManager:
		isManager, err := s.Users.IsManagerOf(ctx, user.UserID, req.UserID)
		if err != nil {
			return err
		}
		if !isManager {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

func (s *Service) Calendar(ctx context.Context, from, to time.Time, includePending bool) ([]CalendarEntry, error) {
	return s.Store.CalendarEntries(ctx, from, to, includePending)
}

func (s *Service) CalendarCSV(ctx context.Context, from, to time.Time) ([]byte, error) {
	entries, err := s.Store.CalendarEntries(ctx, from, to, true)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"Employee", "Type", "Start", "End", "Days", "Status"}); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		record := []string{
			entry.UserName,
			string(entry.Type),
			entry.StartDate.Format("2006-01-02"),
			entry.EndDate.Format("2006-01-02"),
			fmt.Sprintf("%d", entry.Days),
			entry.Status,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func (s *Service) CalendarPDF(ctx context.Context, from, to time.Time) ([]byte, error) {
	entries, err := s.Store.CalendarEntries(ctx, from, to, true)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Leave Calendar")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("%s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")))
	pdf.Ln(12)

	widths := []float64{55, 25, 28, 28, 18, 26}
	headers := []string{"Employee", "Type", "Start", "End", "Days", "Status"}
	pdf.SetFont("Helvetica", "B", 9)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, entry := range entries {
		cells := []string{
			entry.UserName,
			string(entry.Type),
			entry.StartDate.Format("2006-01-02"),
			entry.EndDate.Format("2006-01-02"),
			fmt.Sprintf("%d", entry.Days),
			entry.Status,
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) notifyUser(ctx context.Context, userID, ntype, title, body string) {
	if s.Notify == nil {
		return
	}
	if err := s.Notify.Create(ctx, userID, ntype, title, body); err != nil {
		slog.Warn("leave notification failed", "type", ntype, "err", err)
	}
}

func (s *Service) notifyManager(ctx context.Context, userID, ntype, title, body string) {
	if s.Notify == nil {
		return
	}
	managerID, err := s.Users.ManagerUserID(ctx, userID)
	if err != nil {
		slog.Warn("manager lookup for notification failed", "err", err)
		return
	}
	if managerID == "" {
		return
	}
	s.notifyUser(ctx, managerID, ntype, title, body)
}
