package repository

import (
	"context"
	"fmt"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"
)

const notificationColumns = `id, user_id, title, message, type, is_read, created_at`

type notificationRepo struct {
	db DBTX
}

func scanNotification(row scanner) (*domain.Notification, error) {
	var n domain.Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// Create implements NotificationRepository.
func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (user_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt).
		Scan(&n.ID, &n.CreatedAt)
	return wrap("notification", err)
}

// ListByUser implements NotificationRepository.
func (r *notificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	return r.list(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
}

// ListUnread implements NotificationRepository.
func (r *notificationRepo) ListUnread(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	return r.list(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		  AND is_read = false
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
}

func (r *notificationRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Notification, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("notifications", err)
	}
	defer rows.Close()

	out := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, wrap("notifications", err)
		}
		out = append(out, n)
	}
	return out, wrap("notifications", rows.Err())
}

// CountUnread implements NotificationRepository.
func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1
		  AND is_read = false`, userID).Scan(&count)
	if err != nil {
		return 0, wrap("notifications", err)
	}
	return count, nil
}

// MarkAsRead implements NotificationRepository. Marking an already read
// notification again is not an error; only a missing or foreign id is.
func (r *notificationRepo) MarkAsRead(ctx context.Context, id int64, userID string) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1
		  AND user_id = $2`, id, userID)
	if err != nil {
		return wrap("notification", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("notification %w", xerrors.ErrNotFound)
	}
	return nil
}
