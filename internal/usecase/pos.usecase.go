package usecase

import (
	"context"
	"strings"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var maxCommissionRate = decimal.NewFromInt(100)

type CreatePOSLocationRequest struct {
	Name           string           `json:"name"`
	Address        string           `json:"address"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
}

type POSUsecase struct {
	store  repository.Store
	logger *zap.Logger
}

func NewPOSUsecase(store repository.Store, logger *zap.Logger) *POSUsecase {
	return &POSUsecase{store: store, logger: logger}
}

// Create registers a point of sale owned by the caller.
func (uc *POSUsecase) Create(ctx context.Context, p access.Principal, req CreatePOSLocationRequest) (*domain.POSLocation, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	address := strings.TrimSpace(req.Address)
	if name == "" || address == "" {
		return nil, xerrors.Invalid("name and address are required")
	}

	rate := domain.DefaultCommissionRate
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
		if rate.IsNegative() || rate.GreaterThan(maxCommissionRate) || !rate.Equal(rate.Round(2)) {
			return nil, xerrors.Invalid("commission_rate must be between 0 and 100 with at most two decimals")
		}
	}

	loc := &domain.POSLocation{
		Name:           name,
		Address:        address,
		OwnerID:        p.UserID,
		IsActive:       true,
		CommissionRate: rate,
	}
	if err := uc.store.POSLocations().Create(ctx, loc); err != nil {
		return nil, err
	}
	uc.logger.Info("pos location created", zap.Int64("pos_location_id", loc.ID), zap.String("owner_id", loc.OwnerID))
	return loc, nil
}

func (uc *POSUsecase) List(ctx context.Context, p access.Principal) ([]*domain.POSLocation, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	return uc.store.POSLocations().ListByOwner(ctx, p.UserID)
}

// Toggle flips the active flag. Documents can only reference active locations.
func (uc *POSUsecase) Toggle(ctx context.Context, p access.Principal, id int64) (*domain.POSLocation, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	loc, err := uc.store.POSLocations().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Require(p, access.OwnerOrRole(loc.OwnerID, domain.RoleSuperadmin)); err != nil {
		return nil, err
	}
	return uc.store.POSLocations().SetActive(ctx, id, !loc.IsActive)
}
