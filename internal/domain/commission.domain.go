package domain

import (
	"time"

	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"
	"github.com/shopspring/decimal"
)

var (
	VecinoShare       = decimal.RequireFromString("0.40")
	CertificadorShare = decimal.RequireFromString("0.35")
	AdminShare        = decimal.RequireFromString("0.25")

	// documents.price is numeric(10,2)
	MaxPrice = decimal.RequireFromString("99999999.99")
)

type Commission struct {
	ID                 int64           `json:"id"`
	DocumentID         int64           `json:"document_id"`
	VecinoID           string          `json:"vecino_id"`
	CertificadorID     string          `json:"certificador_id"`
	VecinoAmount       decimal.Decimal `json:"vecino_amount"`
	CertificadorAmount decimal.Decimal `json:"certificador_amount"`
	AdminAmount        decimal.Decimal `json:"admin_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	IsPaid             bool            `json:"is_paid"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

type Payee struct {
	UserID string
	Amount decimal.Decimal
}

// Payees lists who receives money from c, one entry per user.
func (c *Commission) Payees() []Payee {
	if c.VecinoID == c.CertificadorID {
		return []Payee{{UserID: c.VecinoID, Amount: c.VecinoAmount.Add(c.CertificadorAmount)}}
	}
	return []Payee{
		{UserID: c.VecinoID, Amount: c.VecinoAmount},
		{UserID: c.CertificadorID, Amount: c.CertificadorAmount},
	}
}

type CommissionSplit struct {
	Vecino       decimal.Decimal
	Certificador decimal.Decimal
	Admin        decimal.Decimal
	Total        decimal.Decimal
}

// ValidatePrice accepts non-negative amounts with at most two decimals that fit numeric(10,2).
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return xerrors.Invalid("price must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return xerrors.Invalid("price must have at most two decimal places")
	}
	if price.GreaterThan(MaxPrice) {
		return xerrors.Invalid("price exceeds %s", MaxPrice.StringFixed(2))
	}
	return nil
}

// SplitCommission divides a document price 40/35/25. The vecino and certificador
// lines are rounded to cents; the admin line takes whatever remains so the three
// parts always add up to the total.
func SplitCommission(total decimal.Decimal) (CommissionSplit, error) {
	if err := ValidatePrice(total); err != nil {
		return CommissionSplit{}, err
	}

	vecino := total.Mul(VecinoShare).Round(2)
	certificador := total.Mul(CertificadorShare).Round(2)
	admin := total.Sub(vecino).Sub(certificador)

	return CommissionSplit{
		Vecino:       vecino,
		Certificador: certificador,
		Admin:        admin,
		Total:        total,
	}, nil
}

// ResolveVecino picks the revenue-share participant: the POS owner when the
// document came through a location, otherwise the submitter.
func ResolveVecino(doc *Document, pos *POSLocation) string {
	if doc.POSLocationID != nil && pos != nil && pos.OwnerID != "" {
		return pos.OwnerID
	}
	return doc.SubmitterID
}

// NewCommission builds the single commission row for a certified document.
func NewCommission(doc *Document, pos *POSLocation, certificadorID string, now time.Time) (*Commission, error) {
	split, err := SplitCommission(doc.Price)
	if err != nil {
		return nil, err
	}
	return &Commission{
		DocumentID:         doc.ID,
		VecinoID:           ResolveVecino(doc, pos),
		CertificadorID:     certificadorID,
		VecinoAmount:       split.Vecino,
		CertificadorAmount: split.Certificador,
		AdminAmount:        split.Admin,
		TotalAmount:        split.Total,
		CreatedAt:          now,
	}, nil
}

type CommissionStats struct {
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalCount   int64           `json:"total_count"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	PaidCount    int64           `json:"paid_count"`
	UnpaidAmount decimal.Decimal `json:"unpaid_amount"`
	UnpaidCount  int64           `json:"unpaid_count"`
}
