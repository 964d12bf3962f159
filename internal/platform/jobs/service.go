// Package jobs runs the portal's periodic housekeeping: expired-session
// purging and idempotency-key cleanup. There is no work queue; each run
// is cheap and idempotent.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/config"
)

type Service struct {
	DB   *pgxpool.Pool
	Auth *auth.Store
	Cfg  config.Config
}

func New(db *pgxpool.Pool, authStore *auth.Store, cfg config.Config) *Service {
	return &Service{DB: db, Auth: authStore, Cfg: cfg}
}

// Start launches the cleanup ticker; it stops when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	if s.Cfg.CleanupInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.Cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runCleanup(ctx)
			}
		}
	}()
}

func (s *Service) runCleanup(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	removed, err := s.Auth.DeleteExpiredSessions(runCtx)
	if err != nil {
		slog.Warn("session cleanup failed", "err", err)
	} else if removed > 0 {
		slog.Info("expired sessions removed", "count", removed)
	}

	tag, err := s.DB.Exec(runCtx, "DELETE FROM idempotency_keys WHERE created_at < now() - interval '7 days'")
	if err != nil {
		slog.Warn("idempotency key cleanup failed", "err", err)
	} else if tag.RowsAffected() > 0 {
		slog.Info("stale idempotency keys removed", "count", tag.RowsAffected())
	}
}
