package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const UserStatusActive = "active"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID       string
	Role     string
	FullName string
	Password string
}

type Profile struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Role      string     `json:"role"`
	ManagerID string     `json:"managerId,omitempty"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, role, full_name, password_hash
    FROM users
    WHERE email = $1 AND status = $2
  `, email, UserStatusActive).Scan(&out.ID, &out.Role, &out.FullName, &out.Password)
	return out, err
}

func (s *Store) Profile(ctx context.Context, userID string) (Profile, error) {
	var out Profile
	var managerID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, full_name, role, manager_id, last_login
    FROM users
    WHERE id = $1
  `, userID).Scan(&out.ID, &out.Email, &out.FullName, &out.Role, &managerID, &out.LastLogin)
	if managerID != nil {
		out.ManagerID = *managerID
	}
	return out, err
}

func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, userID, tokenHash, expires)
	return err
}

func (s *Store) SessionValid(ctx context.Context, userID, tokenHash string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE user_id = $1 AND token_hash = $2 AND expires_at > now() AND revoked_at IS NULL
  `, userID, tokenHash).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) RevokeSession(ctx context.Context, userID, tokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND token_hash = $2", userID, tokenHash)
	return err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

// DeleteExpiredSessions removes rows that can no longer authenticate
// anything; called by the cleanup job.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM sessions WHERE expires_at < now() OR revoked_at IS NOT NULL")
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) IsManagerOf(ctx context.Context, managerUserID, userID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM users
    WHERE id = $1 AND manager_id = $2
  `, userID, managerUserID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DirectReportIDs(ctx context.Context, managerUserID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM users WHERE manager_id = $1", managerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) ManagerUserID(ctx context.Context, userID string) (string, error) {
	var managerID *string
	err := s.DB.QueryRow(ctx, "SELECT manager_id FROM users WHERE id = $1", userID).Scan(&managerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	if managerID == nil {
		return "", nil
	}
	return *managerID, nil
}

func (s *Store) UserIDsByRole(ctx context.Context, role string) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM users WHERE role = $1 AND status = $2", role, UserStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
