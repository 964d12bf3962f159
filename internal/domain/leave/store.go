package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("leave request not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Balance(ctx context.Context, userID string) (Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT category, allocated, used
    FROM leave_balances
    WHERE user_id = $1
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balance := Balance{}
	for rows.Next() {
		var category string
		var allocated, used int
		if err := rows.Scan(&category, &allocated, &used); err != nil {
			return nil, err
		}
		balance[Category(category)] = Entry{
			Allocated: allocated,
			Used:      used,
			Remaining: allocated - used,
		}
	}
	return balance, rows.Err()
}

func (s *Store) CreateRequest(ctx context.Context, req Request) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (user_id, type, start_date, end_date, days, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, req.UserID, string(req.Type), req.StartDate, req.EndDate, req.Days, req.Reason, StatusPending).Scan(&id)
	return id, err
}

const requestColumns = `
    r.id, r.user_id, u.full_name, r.type, r.start_date, r.end_date, r.days,
    r.reason, r.status, COALESCE(r.rejection_reason, ''), COALESCE(r.approved_by::text, ''),
    r.created_at, r.updated_at`

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	var category string
	err := row.Scan(&req.ID, &req.UserID, &req.UserName, &category, &req.StartDate, &req.EndDate,
		&req.Days, &req.Reason, &req.Status, &req.RejectionReason, &req.ApprovedBy,
		&req.CreatedAt, &req.UpdatedAt)
	req.Type = Category(category)
	return req, err
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (Request, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests r
    JOIN users u ON u.id = r.user_id
    WHERE r.id = $1
  `, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (s *Store) ListRequestsForUser(ctx context.Context, userID string, limit, offset int) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests r
    JOIN users u ON u.id = r.user_id
    WHERE r.user_id = $1
    ORDER BY r.created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListRequestsForUsers returns requests belonging to any of the given
// users, newest first. Used for the manager view over direct reports.
func (s *Store) ListRequestsForUsers(ctx context.Context, userIDs []string, status string, limit, offset int) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests r
    JOIN users u ON u.id = r.user_id
    WHERE r.user_id = ANY($1) AND ($2 = '' OR r.status = $2)
    ORDER BY r.created_at DESC
    LIMIT $3 OFFSET $4
  `, userIDs, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) ListAllRequests(ctx context.Context, status string, limit, offset int) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests r
    JOIN users u ON u.id = r.user_id
    WHERE ($1 = '' OR r.status = $1)
    ORDER BY r.created_at DESC
    LIMIT $2 OFFSET $3
  `, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// ApproveRequest marks a pending request approved and deducts its days
// from the first bucket in priority order with enough remaining days,
// falling back through the rest; the last bucket takes the deduction
// even if it goes over. All in one transaction.
func (s *Store) ApproveRequest(ctx context.Context, requestID, approverID string, buckets []Category) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID string
	var days int
	var status string
	err = tx.QueryRow(ctx, `
    SELECT user_id, days, status
    FROM leave_requests
    WHERE id = $1
    FOR UPDATE
  `, requestID).Scan(&userID, &days, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != StatusPending {
		return ErrInvalidState
	}

	target := buckets[len(buckets)-1]
	for _, bucket := range buckets {
		var remaining int
		err := tx.QueryRow(ctx, `
      SELECT allocated - used
      FROM leave_balances
      WHERE user_id = $1 AND category = $2
    `, userID, string(bucket)).Scan(&remaining)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		if remaining >= days {
			target = bucket
			break
		}
	}

	if target != CategoryUnpaid {
		if _, err := tx.Exec(ctx, `
      INSERT INTO leave_balances (user_id, category, allocated, used)
      VALUES ($1, $2, 0, $3)
      ON CONFLICT (user_id, category) DO UPDATE SET used = leave_balances.used + EXCLUDED.used
    `, userID, string(target), days); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2, approved_by = $3, updated_at = now()
    WHERE id = $1
  `, requestID, StatusApproved, approverID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) RejectRequest(ctx context.Context, requestID, approverID, rejectionReason string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2, approved_by = $3, rejection_reason = $4, updated_at = now()
    WHERE id = $1 AND status = $5
  `, requestID, StatusRejected, approverID, rejectionReason, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// CancelRequest deletes the caller's own pending request.
func (s *Store) CancelRequest(ctx context.Context, requestID, userID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM leave_requests
    WHERE id = $1 AND user_id = $2 AND status = $3
  `, requestID, userID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// CalendarEntries lists approved (and optionally pending) leave that
// overlaps the given window, for the team calendar feed and exports.
func (s *Store) CalendarEntries(ctx context.Context, from, to time.Time, includePending bool) ([]CalendarEntry, error) {
	statuses := []string{StatusApproved}
	if includePending {
		statuses = append(statuses, StatusPending)
	}
	rows, err := s.DB.Query(ctx, `
    SELECT r.user_id, u.full_name, r.type, r.start_date, r.end_date, r.days, r.status
    FROM leave_requests r
    JOIN users u ON u.id = r.user_id
    WHERE r.status = ANY($1) AND r.start_date <= $3 AND r.end_date >= $2
    ORDER BY r.start_date, u.full_name
  `, statuses, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalendarEntry
	for rows.Next() {
		var entry CalendarEntry
		var category string
		if err := rows.Scan(&entry.UserID, &entry.UserName, &category, &entry.StartDate, &entry.EndDate, &entry.Days, &entry.Status); err != nil {
			return nil, err
		}
		entry.Type = Category(category)
		out = append(out, entry)
	}
	return out, rows.Err()
}
