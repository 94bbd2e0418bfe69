package repository

import (
	"context"
	"fmt"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const posColumns = `id, name, address, owner_id, is_active, commission_rate::text, created_at, updated_at`

type posRepo struct {
	db DBTX
}

func scanPOSLocation(row scanner) (*domain.POSLocation, error) {
	var (
		p    domain.POSLocation
		rate string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Address, &p.OwnerID, &p.IsActive, &rate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("pos location %d commission rate %q: %w", p.ID, rate, err)
	}
	p.CommissionRate = d
	return &p, nil
}

// Create implements POSLocationRepository.
func (r *posRepo) Create(ctx context.Context, p *domain.POSLocation) error {
	query := `
		INSERT INTO pos_locations (name, address, owner_id, is_active, commission_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.Name, p.Address, p.OwnerID, p.IsActive, p.CommissionRate.StringFixed(2), p.CreatedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return wrap("pos location", err)
}

// GetByID implements POSLocationRepository.
func (r *posRepo) GetByID(ctx context.Context, id int64) (*domain.POSLocation, error) {
	p, err := scanPOSLocation(r.db.QueryRow(ctx, `SELECT `+posColumns+` FROM pos_locations WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("pos location", err)
	}
	return p, nil
}

// ListByOwner implements POSLocationRepository.
func (r *posRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.POSLocation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+posColumns+`
		FROM pos_locations
		WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, wrap("pos locations", err)
	}
	defer rows.Close()

	out := make([]*domain.POSLocation, 0)
	for rows.Next() {
		p, err := scanPOSLocation(rows)
		if err != nil {
			return nil, wrap("pos locations", err)
		}
		out = append(out, p)
	}
	return out, wrap("pos locations", rows.Err())
}

// SetActive implements POSLocationRepository.
func (r *posRepo) SetActive(ctx context.Context, id int64, active bool) (*domain.POSLocation, error) {
	query := `
		UPDATE pos_locations
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + posColumns
	p, err := scanPOSLocation(r.db.QueryRow(ctx, query, id, active))
	if err != nil {
		return nil, wrap("pos location", err)
	}
	return p, nil
}
