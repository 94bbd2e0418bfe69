package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"
)

type sessionRepo struct {
	db DBTX
}

// Create implements SessionRepository.
func (r *sessionRepo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`, s.ID, s.UserID, s.CreatedAt, s.ExpiresAt)
	return wrap("session", err)
}

// Get implements SessionRepository.
func (r *sessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, created_at, expires_at, revoked_at
		FROM sessions
		WHERE id = $1`, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.RevokedAt)
	if err != nil {
		return nil, wrap("session", err)
	}
	return &s, nil
}

// Revoke implements SessionRepository.
func (r *sessionRepo) Revoke(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE id = $1
		  AND revoked_at IS NULL`, id)
	if err != nil {
		return wrap("session", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("session %w", xerrors.ErrNotFound)
	}
	return nil
}

// DeleteExpired implements SessionRepository.
func (r *sessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `
		DELETE FROM sessions
		WHERE expires_at < $1
		   OR revoked_at IS NOT NULL`, before)
	if err != nil {
		return 0, wrap("sessions", err)
	}
	return ct.RowsAffected(), nil
}
