package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const commissionColumns = `
	id, document_id, vecino_id, certificador_id, vecino_amount::text, certificador_amount::text,
	admin_amount::text, total_amount::text, is_paid, paid_at, created_at`

type commissionRepo struct {
	db DBTX
}

func scanCommission(row scanner) (*domain.Commission, error) {
	var (
		c                              domain.Commission
		vecino, cert, admin, totalAmnt string
	)
	if err := row.Scan(
		&c.ID, &c.DocumentID, &c.VecinoID, &c.CertificadorID, &vecino, &cert,
		&admin, &totalAmnt, &c.IsPaid, &c.PaidAt, &c.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&c.VecinoAmount, vecino},
		{&c.CertificadorAmount, cert},
		{&c.AdminAmount, admin},
		{&c.TotalAmount, totalAmnt},
	} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("commission %d amount %q: %w", c.ID, f.src, err)
		}
	}
	return &c, nil
}

// Create implements CommissionRepository. commissions.document_id is unique,
// so a second row for the same document fails with ErrConflict.
func (r *commissionRepo) Create(ctx context.Context, c *domain.Commission) error {
	query := `
		INSERT INTO commissions
		  (document_id, vecino_id, certificador_id, vecino_amount, certificador_amount,
		   admin_amount, total_amount, is_paid, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8, $9)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		c.DocumentID, c.VecinoID, c.CertificadorID,
		c.VecinoAmount.StringFixed(2), c.CertificadorAmount.StringFixed(2),
		c.AdminAmount.StringFixed(2), c.TotalAmount.StringFixed(2), c.IsPaid, c.CreatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	return wrap("commission", err)
}

// GetByDocument implements CommissionRepository.
func (r *commissionRepo) GetByDocument(ctx context.Context, documentID int64) (*domain.Commission, error) {
	c, err := scanCommission(r.db.QueryRow(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE document_id = $1`, documentID))
	if err != nil {
		return nil, wrap("commission", err)
	}
	return c, nil
}

// ListByParticipant implements CommissionRepository.
func (r *commissionRepo) ListByParticipant(ctx context.Context, userID string) ([]*domain.Commission, error) {
	return r.list(ctx, `
		SELECT `+commissionColumns+`
		FROM commissions
		WHERE vecino_id = $1 OR certificador_id = $1
		ORDER BY created_at DESC`, userID)
}

// ListUnpaid implements CommissionRepository.
func (r *commissionRepo) ListUnpaid(ctx context.Context) ([]*domain.Commission, error) {
	return r.list(ctx, `
		SELECT `+commissionColumns+`
		FROM commissions
		WHERE is_paid = false
		ORDER BY created_at ASC`)
}

func (r *commissionRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Commission, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("commissions", err)
	}
	defer rows.Close()

	out := make([]*domain.Commission, 0)
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, wrap("commissions", err)
		}
		out = append(out, c)
	}
	return out, wrap("commissions", rows.Err())
}

// MarkPaid implements CommissionRepository.
func (r *commissionRepo) MarkPaid(ctx context.Context, id int64, paidAt time.Time) (*domain.Commission, error) {
	query := `
		UPDATE commissions
		SET is_paid = true, paid_at = $2
		WHERE id = $1
		  AND is_paid = false
		RETURNING ` + commissionColumns
	c, err := scanCommission(r.db.QueryRow(ctx, query, id, paidAt))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrap("commission", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM commissions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, wrap("commission", err)
	}
	if exists {
		return nil, xerrors.ErrCommissionPaid
	}
	return nil, fmt.Errorf("commission %w", xerrors.ErrNotFound)
}

// Stats implements CommissionRepository.
func (r *commissionRepo) Stats(ctx context.Context) (*domain.CommissionStats, error) {
	var (
		st                   domain.CommissionStats
		totalAmount, paidAmt string
	)
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)::text,
		       COUNT(*),
		       COALESCE(SUM(total_amount) FILTER (WHERE is_paid), 0)::text,
		       COUNT(*) FILTER (WHERE is_paid)
		FROM commissions`).Scan(&totalAmount, &st.TotalCount, &paidAmt, &st.PaidCount)
	if err != nil {
		return nil, wrap("commission stats", err)
	}

	if st.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
		return nil, fmt.Errorf("commission stats total %q: %w", totalAmount, err)
	}
	if st.PaidAmount, err = decimal.NewFromString(paidAmt); err != nil {
		return nil, fmt.Errorf("commission stats paid %q: %w", paidAmt, err)
	}
	st.UnpaidAmount = st.TotalAmount.Sub(st.PaidAmount)
	st.UnpaidCount = st.TotalCount - st.PaidCount
	return &st, nil
}
