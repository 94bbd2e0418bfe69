package usecase

import (
	"context"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type NotificationUsecase struct {
	repo repository.NotificationRepository
}

func NewNotificationUsecase(repo repository.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{repo: repo}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (uc *NotificationUsecase) List(ctx context.Context, p access.Principal, limit, offset int) ([]*domain.Notification, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return uc.repo.ListByUser(ctx, p.UserID, limit, offset)
}

func (uc *NotificationUsecase) ListUnread(ctx context.Context, p access.Principal, limit, offset int) ([]*domain.Notification, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	return uc.repo.ListUnread(ctx, p.UserID, limit, offset)
}

func (uc *NotificationUsecase) CountUnread(ctx context.Context, p access.Principal) (int, error) {
	if err := access.Require(p); err != nil {
		return 0, err
	}
	return uc.repo.CountUnread(ctx, p.UserID)
}

// MarkAsRead only touches notifications owned by the caller; others look missing.
func (uc *NotificationUsecase) MarkAsRead(ctx context.Context, p access.Principal, id int64) error {
	if err := access.Require(p); err != nil {
		return err
	}
	if id <= 0 {
		return xerrors.Invalid("invalid notification id")
	}
	return uc.repo.MarkAsRead(ctx, id, p.UserID)
}
