package usecase

import (
	"context"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/events"
	"github.com/Houmeecl/pilotonotary-backend/internal/metrics"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"

	"go.uber.org/zap"
)

type CommissionUsecase struct {
	store     repository.Store
	notifier  Dispatcher
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewCommissionUsecase(store repository.Store, notifier Dispatcher, publisher events.Publisher, logger *zap.Logger) *CommissionUsecase {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &CommissionUsecase{store: store, notifier: notifier, publisher: publisher, logger: logger, now: time.Now}
}

// ListForUser returns commissions where the caller is the vecino or the certificador.
func (uc *CommissionUsecase) ListForUser(ctx context.Context, p access.Principal) ([]*domain.Commission, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	return uc.store.Commissions().ListByParticipant(ctx, p.UserID)
}

func (uc *CommissionUsecase) ListUnpaid(ctx context.Context, p access.Principal) ([]*domain.Commission, error) {
	if err := access.Require(p, access.HasRole(domain.RoleSuperadmin)); err != nil {
		return nil, err
	}
	return uc.store.Commissions().ListUnpaid(ctx)
}

// MarkPaid settles a commission once. Paying it again is a state conflict.
func (uc *CommissionUsecase) MarkPaid(ctx context.Context, p access.Principal, commissionID int64) (*domain.Commission, error) {
	if err := access.Require(p, access.HasRole(domain.RoleSuperadmin)); err != nil {
		return nil, err
	}

	c, err := uc.store.Commissions().MarkPaid(ctx, commissionID, uc.now().UTC())
	if err != nil {
		return nil, err
	}

	uc.logger.Info("commission paid",
		zap.Int64("commission_id", c.ID),
		zap.Int64("document_id", c.DocumentID),
		zap.String("paid_by", p.UserID))

	if uc.notifier != nil {
		for _, payee := range c.Payees() {
			if _, err := uc.notifier.Notify(ctx, payee.UserID, "Comisión pagada", commissionPaidMessage(c, payee.Amount)); err != nil {
				metrics.NotificationFailures.Inc()
				uc.logger.Warn("notification not delivered", zap.String("user_id", payee.UserID), zap.Error(err))
			}
		}
	}

	if err := uc.publisher.Publish(ctx, events.Event{
		Type:    events.CommissionPaid,
		Key:     events.DocumentKey(c.DocumentID),
		ActorID: p.UserID,
		Payload: c,
	}); err != nil {
		metrics.EventPublishErrors.Inc()
		uc.logger.Warn("event not published", zap.String("type", events.CommissionPaid), zap.Error(err))
	}
	return c, nil
}

// RefreshUnpaidGauge is run by the scheduler to expose the payout backlog.
func (uc *CommissionUsecase) RefreshUnpaidGauge(ctx context.Context) error {
	stats, err := uc.store.Commissions().Stats(ctx)
	if err != nil {
		return err
	}
	metrics.UnpaidCommissions.Set(float64(stats.UnpaidCount))
	return nil
}
