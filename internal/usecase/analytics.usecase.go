package usecase

import (
	"context"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
)

type AnalyticsUsecase struct {
	store repository.Store
}

func NewAnalyticsUsecase(store repository.Store) *AnalyticsUsecase {
	return &AnalyticsUsecase{store: store}
}

func (uc *AnalyticsUsecase) Documents(ctx context.Context, p access.Principal) (*domain.DocumentStats, error) {
	if err := access.Require(p, access.HasRole(domain.RoleSuperadmin)); err != nil {
		return nil, err
	}
	byStatus, err := uc.store.Documents().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewDocumentStats(byStatus), nil
}

func (uc *AnalyticsUsecase) Commissions(ctx context.Context, p access.Principal) (*domain.CommissionStats, error) {
	if err := access.Require(p, access.HasRole(domain.RoleSuperadmin)); err != nil {
		return nil, err
	}
	return uc.store.Commissions().Stats(ctx)
}
