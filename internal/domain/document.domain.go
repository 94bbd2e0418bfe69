package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DocumentType string

const (
	DocDeclaracionJurada DocumentType = "declaracion_jurada"
	DocFiniquitoLaboral  DocumentType = "finiquito_laboral"
	DocContratoSimple    DocumentType = "contrato_simple"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocDeclaracionJurada, DocFiniquitoLaboral, DocContratoSimple:
		return true
	}
	return false
}

type DocumentStatus string

const (
	StatusDraft                DocumentStatus = "draft"
	StatusPendingVerification  DocumentStatus = "pending_verification"
	StatusPendingCertification DocumentStatus = "pending_certification"
	StatusCertified            DocumentStatus = "certified"
	StatusRejected             DocumentStatus = "rejected"
	StatusCancelled            DocumentStatus = "cancelled"
)

// forward edges of the lifecycle; cancelled is handled separately
var transitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft:                {StatusPendingVerification},
	StatusPendingVerification:  {StatusPendingCertification},
	StatusPendingCertification: {StatusCertified, StatusRejected},
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingVerification, StatusPendingCertification,
		StatusCertified, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (s DocumentStatus) Terminal() bool {
	return s == StatusCertified || s == StatusRejected || s == StatusCancelled
}

// CanTransition reports whether the lifecycle graph has an edge s -> to.
func (s DocumentStatus) CanTransition(to DocumentStatus) bool {
	if !s.Valid() || s.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Document struct {
	ID                 int64             `json:"id"`
	Title              string            `json:"title"`
	Type               DocumentType      `json:"type"`
	Content            map[string]any    `json:"content,omitempty"`
	Status             DocumentStatus    `json:"status"`
	SubmitterID        string            `json:"submitter_id"`
	CertificadorID     *string           `json:"certificador_id,omitempty"`
	POSLocationID      *int64            `json:"pos_location_id,omitempty"`
	Price              decimal.Decimal   `json:"price"`
	IsIdentityVerified bool              `json:"is_identity_verified"`
	VerificationData   *VerificationData `json:"verification_data,omitempty"`
	DigitalSignature   *string           `json:"digital_signature,omitempty"`
	RejectionReason    *string           `json:"rejection_reason,omitempty"`
	PDFPath            *string           `json:"pdf_path,omitempty"`
	QRValidationCode   string            `json:"qr_validation_code"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	CertifiedAt        *time.Time        `json:"certified_at,omitempty"`
}

// AssignedTo reports whether the document is bound to the given certifier.
func (d *Document) AssignedTo(certificadorID string) bool {
	return d.CertificadorID != nil && *d.CertificadorID == certificadorID
}

// VerificationData is stored as jsonb next to the identity flag.
type VerificationData struct {
	Method     string    `json:"method"`
	RUT        string    `json:"rut"`
	VerifiedAt time.Time `json:"verified_at"`
}

// DocumentTransition is the "set status + merge partial fields" update.
// Nil fields are left untouched.
type DocumentTransition struct {
	To                 DocumentStatus
	CertificadorID     *string
	IsIdentityVerified *bool
	VerificationData   *VerificationData
	DigitalSignature   *string
	RejectionReason    *string
	CertifiedAt        *time.Time
}

// Apply merges the transition into d. Repositories without SQL use it to mirror the UPDATE.
func (t DocumentTransition) Apply(d *Document, now time.Time) {
	d.Status = t.To
	if t.CertificadorID != nil {
		d.CertificadorID = t.CertificadorID
	}
	if t.IsIdentityVerified != nil {
		d.IsIdentityVerified = *t.IsIdentityVerified
	}
	if t.VerificationData != nil {
		d.VerificationData = t.VerificationData
	}
	if t.DigitalSignature != nil {
		d.DigitalSignature = t.DigitalSignature
	}
	if t.RejectionReason != nil {
		d.RejectionReason = t.RejectionReason
	}
	if t.CertifiedAt != nil {
		d.CertifiedAt = t.CertifiedAt
	}
	d.UpdatedAt = now
}

// PublicDocument is what the QR validation endpoint exposes.
type PublicDocument struct {
	Title            string         `json:"title"`
	Type             DocumentType   `json:"type"`
	Status           DocumentStatus `json:"status"`
	QRValidationCode string         `json:"qr_validation_code"`
	Signed           bool           `json:"signed"`
	CertifiedAt      *time.Time     `json:"certified_at,omitempty"`
}

func (d *Document) Public() *PublicDocument {
	return &PublicDocument{
		Title:            d.Title,
		Type:             d.Type,
		Status:           d.Status,
		QRValidationCode: d.QRValidationCode,
		Signed:           d.DigitalSignature != nil,
		CertifiedAt:      d.CertifiedAt,
	}
}

// DocumentStats: Pending counts documents waiting for a certifier,
// AwaitingVerification those still before the identity check.
type DocumentStats struct {
	Total                int64                    `json:"total"`
	Certified            int64                    `json:"certified"`
	Pending              int64                    `json:"pending"`
	AwaitingVerification int64                    `json:"awaiting_verification"`
	ByStatus             map[DocumentStatus]int64 `json:"by_status"`
}

// NewDocumentStats derives the headline numbers from per-status counts.
func NewDocumentStats(byStatus map[DocumentStatus]int64) *DocumentStats {
	st := &DocumentStats{ByStatus: byStatus}
	for s, n := range byStatus {
		st.Total += n
		switch s {
		case StatusCertified:
			st.Certified += n
		case StatusPendingCertification:
			st.Pending += n
		case StatusPendingVerification:
			st.AwaitingVerification += n
		}
	}
	return st
}
