package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const documentColumns = `
	id, title, type, content::text, status, submitter_id, certificador_id, pos_location_id,
	price::text, is_identity_verified, verification_data::text, digital_signature,
	rejection_reason, pdf_path, qr_validation_code, created_at, updated_at, certified_at`

type documentRepo struct {
	db DBTX
}

func scanDocument(row scanner) (*domain.Document, error) {
	var (
		d            domain.Document
		content      *string
		price        string
		verification *string
	)
	if err := row.Scan(
		&d.ID, &d.Title, &d.Type, &content, &d.Status, &d.SubmitterID, &d.CertificadorID, &d.POSLocationID,
		&price, &d.IsIdentityVerified, &verification, &d.DigitalSignature,
		&d.RejectionReason, &d.PDFPath, &d.QRValidationCode, &d.CreatedAt, &d.UpdatedAt, &d.CertifiedAt,
	); err != nil {
		return nil, err
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("document %d price %q: %w", d.ID, price, err)
	}
	d.Price = p

	if content != nil && *content != "" {
		if err := json.Unmarshal([]byte(*content), &d.Content); err != nil {
			return nil, fmt.Errorf("document %d content: %w", d.ID, err)
		}
	}
	if verification != nil && *verification != "" {
		d.VerificationData = new(domain.VerificationData)
		if err := json.Unmarshal([]byte(*verification), d.VerificationData); err != nil {
			return nil, fmt.Errorf("document %d verification data: %w", d.ID, err)
		}
	}
	return &d, nil
}

func jsonParam(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// Create implements DocumentRepository.
func (r *documentRepo) Create(ctx context.Context, d *domain.Document) error {
	var content any
	if d.Content != nil {
		content = d.Content
	}
	contentJSON, err := jsonParam(content)
	if err != nil {
		return xerrors.Invalid("content: %v", err)
	}

	query := `
		INSERT INTO documents
		  (title, type, content, status, submitter_id, certificador_id, pos_location_id,
		   price, is_identity_verified, pdf_path, qr_validation_code, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12, $12)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		d.Title, d.Type, contentJSON, d.Status, d.SubmitterID, d.CertificadorID, d.POSLocationID,
		d.Price.StringFixed(2), d.IsIdentityVerified, d.PDFPath, d.QRValidationCode, d.CreatedAt,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return wrap("document", err)
}

// GetByID implements DocumentRepository.
func (r *documentRepo) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrap("document", err)
	}
	return d, nil
}

// GetByQRCode implements DocumentRepository.
func (r *documentRepo) GetByQRCode(ctx context.Context, code string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE qr_validation_code = $1`
	d, err := scanDocument(r.db.QueryRow(ctx, query, code))
	if err != nil {
		return nil, wrap("document", err)
	}
	return d, nil
}

// ListAll implements DocumentRepository.
func (r *documentRepo) ListAll(ctx context.Context) ([]*domain.Document, error) {
	return r.list(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`)
}

// ListBySubmitter implements DocumentRepository.
func (r *documentRepo) ListBySubmitter(ctx context.Context, submitterID string) ([]*domain.Document, error) {
	return r.list(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE submitter_id = $1
		ORDER BY created_at DESC`, submitterID)
}

// ListByCertificador implements DocumentRepository.
func (r *documentRepo) ListByCertificador(ctx context.Context, certificadorID string) ([]*domain.Document, error) {
	return r.list(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE certificador_id = $1
		  AND status IN ('pending_certification', 'certified', 'rejected')
		ORDER BY created_at DESC`, certificadorID)
}

// ListPendingFor implements DocumentRepository.
func (r *documentRepo) ListPendingFor(ctx context.Context, certificadorID string) ([]*domain.Document, error) {
	return r.list(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE status = 'pending_certification'
		  AND (certificador_id IS NULL OR certificador_id = $1)
		ORDER BY created_at ASC`, certificadorID)
}

func (r *documentRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("documents", err)
	}
	defer rows.Close()

	docs := make([]*domain.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, wrap("documents", err)
		}
		docs = append(docs, d)
	}
	return docs, wrap("documents", rows.Err())
}

// Transition implements DocumentRepository. The WHERE clause on status is the
// optimistic guard; concurrent reviewers race on it and only one row update wins.
func (r *documentRepo) Transition(ctx context.Context, id int64, from domain.DocumentStatus, t domain.DocumentTransition) (*domain.Document, error) {
	if !from.CanTransition(t.To) {
		return nil, fmt.Errorf("%w: %s -> %s", xerrors.ErrStateConflict, from, t.To)
	}

	var verification any
	if t.VerificationData != nil {
		verification = t.VerificationData
	}
	verificationJSON, err := jsonParam(verification)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE documents
		SET status               = $3,
		    certificador_id      = COALESCE($4, certificador_id),
		    is_identity_verified = COALESCE($5, is_identity_verified),
		    verification_data    = COALESCE($6::jsonb, verification_data),
		    digital_signature    = COALESCE($7, digital_signature),
		    rejection_reason     = COALESCE($8, rejection_reason),
		    certified_at         = COALESCE($9, certified_at),
		    updated_at           = NOW()
		WHERE id = $1
		  AND status = $2
		RETURNING ` + documentColumns

	d, err := scanDocument(r.db.QueryRow(ctx, query,
		id, from, t.To, t.CertificadorID, t.IsIdentityVerified, verificationJSON,
		t.DigitalSignature, t.RejectionReason, t.CertifiedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w: no longer %s", id, xerrors.ErrStateConflict, from)
	}
	if err != nil {
		return nil, wrap("document", err)
	}
	return d, nil
}

// CountByStatus implements DocumentRepository.
func (r *documentRepo) CountByStatus(ctx context.Context) (map[domain.DocumentStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, wrap("document stats", err)
	}
	defer rows.Close()

	out := make(map[domain.DocumentStatus]int64)
	for rows.Next() {
		var (
			status domain.DocumentStatus
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, wrap("document stats", err)
		}
		out[status] = n
	}
	return out, wrap("document stats", rows.Err())
}
