package domain

import (
	"testing"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommission(t *testing.T) {
	cases := []struct {
		total, vecino, cert, admin string
	}{
		{"10000", "4000", "3500", "2500"},
		{"0", "0", "0", "0"},
		{"0.01", "0", "0", "0.01"},
		{"99.99", "40", "35", "24.99"},
		{"12345.67", "4938.27", "4320.98", "3086.42"},
	}
	for _, tc := range cases {
		t.Run(tc.total, func(t *testing.T) {
			total := decimal.RequireFromString(tc.total)
			s, err := SplitCommission(total)
			require.NoError(t, err)

			assert.True(t, s.Vecino.Equal(decimal.RequireFromString(tc.vecino)), "vecino %s", s.Vecino)
			assert.True(t, s.Certificador.Equal(decimal.RequireFromString(tc.cert)), "certificador %s", s.Certificador)
			assert.True(t, s.Admin.Equal(decimal.RequireFromString(tc.admin)), "admin %s", s.Admin)
			assert.True(t, s.Vecino.Add(s.Certificador).Add(s.Admin).Equal(total))
		})
	}
}

func TestSplitCommissionSumsForEveryCent(t *testing.T) {
	for cents := int64(0); cents <= 2000; cents++ {
		total := decimal.New(cents, -2)
		s, err := SplitCommission(total)
		require.NoError(t, err)
		require.True(t, s.Vecino.Add(s.Certificador).Add(s.Admin).Equal(total), "total %s", total)
		require.False(t, s.Admin.IsNegative())
	}
}

func TestValidatePrice(t *testing.T) {
	assert.NoError(t, ValidatePrice(decimal.RequireFromString("99999999.99")))
	assert.ErrorIs(t, ValidatePrice(decimal.RequireFromString("-1")), xerrors.ErrInvalidInput)
	assert.ErrorIs(t, ValidatePrice(decimal.RequireFromString("1.005")), xerrors.ErrInvalidInput)
	assert.ErrorIs(t, ValidatePrice(decimal.RequireFromString("100000000")), xerrors.ErrInvalidInput)
}

func TestResolveVecino(t *testing.T) {
	posID := int64(7)
	doc := &Document{SubmitterID: "U1"}
	pos := &POSLocation{ID: posID, OwnerID: "V9"}

	assert.Equal(t, "U1", ResolveVecino(doc, nil))
	assert.Equal(t, "U1", ResolveVecino(doc, pos))

	doc.POSLocationID = &posID
	assert.Equal(t, "V9", ResolveVecino(doc, pos))
	assert.Equal(t, "U1", ResolveVecino(doc, nil))
}

func TestNewCommission(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &Document{ID: 3, SubmitterID: "U1", Price: decimal.NewFromInt(10000)}

	c, err := NewCommission(doc, nil, "C1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.DocumentID)
	assert.Equal(t, "U1", c.VecinoID)
	assert.Equal(t, "C1", c.CertificadorID)
	assert.False(t, c.IsPaid)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, "10000", c.TotalAmount.String())
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]DocumentStatus]bool{
		{StatusDraft, StatusPendingVerification}:                true,
		{StatusPendingVerification, StatusPendingCertification}: true,
		{StatusPendingCertification, StatusCertified}:           true,
		{StatusPendingCertification, StatusRejected}:            true,
		{StatusDraft, StatusCancelled}:                          true,
		{StatusPendingVerification, StatusCancelled}:            true,
		{StatusPendingCertification, StatusCancelled}:           true,
	}
	all := []DocumentStatus{StatusDraft, StatusPendingVerification, StatusPendingCertification,
		StatusCertified, StatusRejected, StatusCancelled}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]DocumentStatus{from, to}], from.CanTransition(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, DocumentStatus("archived").CanTransition(StatusCancelled))
}

func TestTransitionApplyMergesOnlySetFields(t *testing.T) {
	sig := "sig"
	reason := "ilegible"
	doc := &Document{Status: StatusPendingCertification, DigitalSignature: &sig}
	now := time.Now().UTC()

	DocumentTransition{To: StatusRejected, RejectionReason: &reason}.Apply(doc, now)

	assert.Equal(t, StatusRejected, doc.Status)
	assert.Equal(t, &sig, doc.DigitalSignature)
	require.NotNil(t, doc.RejectionReason)
	assert.Equal(t, "ilegible", *doc.RejectionReason)
	assert.Equal(t, now, doc.UpdatedAt)
}

func TestPublicHidesPrivateFields(t *testing.T) {
	sig := "sig"
	doc := &Document{Title: "Finiquito", Status: StatusCertified, DigitalSignature: &sig, SubmitterID: "U1", QRValidationCode: "QR1"}
	pub := doc.Public()
	assert.True(t, pub.Signed)
	assert.Equal(t, "QR1", pub.QRValidationCode)
}

func TestCommissionPayees(t *testing.T) {
	c := &Commission{
		VecinoID:           "U1",
		CertificadorID:     "C1",
		VecinoAmount:       decimal.NewFromInt(4000),
		CertificadorAmount: decimal.NewFromInt(3500),
	}
	payees := c.Payees()
	require.Len(t, payees, 2)
	assert.Equal(t, "U1", payees[0].UserID)
	assert.Equal(t, "C1", payees[1].UserID)

	c.VecinoID = "C1"
	payees = c.Payees()
	require.Len(t, payees, 1)
	assert.Equal(t, "C1", payees[0].UserID)
	assert.True(t, payees[0].Amount.Equal(decimal.NewFromInt(7500)))
}

func TestNewDocumentStats(t *testing.T) {
	st := NewDocumentStats(map[DocumentStatus]int64{
		StatusCertified:            4,
		StatusPendingVerification:  2,
		StatusPendingCertification: 1,
		StatusRejected:             3,
	})
	assert.Equal(t, int64(10), st.Total)
	assert.Equal(t, int64(4), st.Certified)
	assert.Equal(t, int64(1), st.Pending)
	assert.Equal(t, int64(2), st.AwaitingVerification)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleCertificador.Valid())
	assert.False(t, Role("notario").Valid())
}
