package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/leave"
	"hrportal/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	adminID, err := ensureUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword, "HR Admin", auth.RoleHR, "")
	if err != nil {
		return err
	}
	if adminID != "" {
		if err := ensureOpeningBalances(ctx, pool, adminID); err != nil {
			return err
		}
	}

	if !cfg.SeedDemoData {
		return nil
	}

	managerID, err := ensureUser(ctx, pool, "manager@example.com", "Manager123!", "Demo Manager", auth.RoleManager, "")
	if err != nil {
		return err
	}
	employeeID, err := ensureUser(ctx, pool, "employee@example.com", "Employee123!", "Demo Employee", auth.RoleEmployee, managerID)
	if err != nil {
		return err
	}
	for _, id := range []string{managerID, employeeID} {
		if id == "" {
			continue
		}
		if err := ensureOpeningBalances(ctx, pool, id); err != nil {
			return err
		}
	}
	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, password, fullName, role, managerID string) (string, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return "", nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return id, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	var manager any
	if managerID != "" {
		manager = managerID
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO users (email, full_name, password_hash, role, manager_id)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, email, fullName, hash, role, manager).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureOpeningBalances(ctx context.Context, pool *pgxpool.Pool, userID string) error {
	for category, allocated := range leave.DefaultAllocations {
		_, err := pool.Exec(ctx, `
      INSERT INTO leave_balances (user_id, category, allocated, used)
      VALUES ($1, $2, $3, 0)
      ON CONFLICT (user_id, category) DO NOTHING
    `, userID, string(category), allocated)
		if err != nil {
			return err
		}
	}
	return nil
}
