package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/pkg/notifier/ws"

	"go.uber.org/zap"
)

// Notifier stores in-app notifications and pushes them to live websocket sessions.
type Notifier struct {
	repo   repository.NotificationRepository
	WS     *ws.Manager
	logger *zap.Logger
	now    func() time.Time
}

func NewNotifier(repo repository.NotificationRepository, wsm *ws.Manager, logger *zap.Logger) *Notifier {
	return &Notifier{repo: repo, WS: wsm, logger: logger, now: time.Now}
}

// Notify persists the message for the user and pushes it over websocket.
// Only the persistence step can fail; the push is best effort.
func (n *Notifier) Notify(ctx context.Context, userID, title, message string) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	rec := &domain.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      domain.NotificationSystem,
		CreatedAt: n.now(),
	}
	if err := n.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("store notification for %s: %w", userID, err)
	}

	n.logger.Debug("notification dispatched",
		zap.String("user_id", userID),
		zap.Int64("notification_id", rec.ID),
		zap.String("title", title))

	if n.WS != nil {
		n.WS.Send(userID, domain.WSMessage{Event: "notification.created", Notification: rec})
	}
	return rec, nil
}
