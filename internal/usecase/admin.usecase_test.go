package usecase

import (
	"context"
	"testing"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository/memory"
	"github.com/Houmeecl/pilotonotary-backend/pkg/id"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCommissionPayout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.pending(t, "10000.00")
	res, err := f.uc.Review(ctx, certifier, ReviewRequest{DocumentID: doc.ID, Action: ActionCertify})
	require.NoError(t, err)

	pub := &recordingPublisher{}
	notes := &recordingDispatcher{}
	uc := NewCommissionUsecase(f.store, notes, pub, zap.NewNop())

	mine, err := uc.ListForUser(ctx, certifier)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	mine, err = uc.ListForUser(ctx, submitter)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	mine, err = uc.ListForUser(ctx, posOwner)
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = uc.ListUnpaid(ctx, certifier)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
	_, err = uc.MarkPaid(ctx, certifier, res.Commission.ID)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	unpaid, err := uc.ListUnpaid(ctx, superadmin)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)

	paid, err := uc.MarkPaid(ctx, superadmin, res.Commission.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	assert.Len(t, notes.sent, 2)
	assert.Equal(t, []string{"commission.paid"}, pub.types())

	_, err = uc.MarkPaid(ctx, superadmin, res.Commission.ID)
	assert.ErrorIs(t, err, xerrors.ErrCommissionPaid)
	assert.ErrorIs(t, err, xerrors.ErrStateConflict)

	_, err = uc.MarkPaid(ctx, superadmin, 424242)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	require.NoError(t, uc.RefreshUnpaidGauge(ctx))

	analytics := NewAnalyticsUsecase(f.store)
	cs, err := analytics.Commissions(ctx, superadmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cs.PaidCount)
	assert.Equal(t, "10000.00", cs.PaidAmount.StringFixed(2))
	assert.Equal(t, int64(0), cs.UnpaidCount)

	ds, err := analytics.Documents(ctx, superadmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ds.Certified)

	_, err = analytics.Documents(ctx, certifier)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestCommissionPayoutToSelfCertifier(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := &domain.Commission{
		DocumentID:         7,
		VecinoID:           certifier.UserID,
		CertificadorID:     certifier.UserID,
		VecinoAmount:       decimal.RequireFromString("4000.00"),
		CertificadorAmount: decimal.RequireFromString("3500.00"),
		AdminAmount:        decimal.RequireFromString("2500.00"),
		TotalAmount:        decimal.RequireFromString("10000.00"),
	}
	require.NoError(t, store.Commissions().Create(ctx, c))

	notes := &recordingDispatcher{}
	uc := NewCommissionUsecase(store, notes, &recordingPublisher{}, zap.NewNop())
	_, err := uc.MarkPaid(ctx, superadmin, c.ID)
	require.NoError(t, err)

	require.Len(t, notes.sent, 1)
	assert.Equal(t, certifier.UserID, notes.sent[0].UserID)
	assert.Equal(t, commissionPaidMessage(c, decimal.RequireFromString("7500")), notes.sent[0].Message)
}

func TestPOSLocations(t *testing.T) {
	store := memory.New()
	uc := NewPOSUsecase(store, zap.NewNop())
	ctx := context.Background()

	loc, err := uc.Create(ctx, posOwner, CreatePOSLocationRequest{Name: "Minimarket Ana", Address: "Los Aromos 12"})
	require.NoError(t, err)
	assert.True(t, loc.IsActive)
	assert.True(t, domain.DefaultCommissionRate.Equal(loc.CommissionRate))
	assert.Equal(t, "U2", loc.OwnerID)

	over := decimal.NewFromInt(120)
	_, err = uc.Create(ctx, posOwner, CreatePOSLocationRequest{Name: "x", Address: "y", CommissionRate: &over})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	_, err = uc.Create(ctx, posOwner, CreatePOSLocationRequest{Name: " ", Address: "y"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	list, err := uc.List(ctx, posOwner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = uc.List(ctx, submitter)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.Toggle(ctx, submitter, loc.ID)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	toggled, err := uc.Toggle(ctx, posOwner, loc.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	toggled, err = uc.Toggle(ctx, superadmin, loc.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestNotificationInbox(t *testing.T) {
	store := memory.New()
	uc := NewNotificationUsecase(store.Notifications())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Notifications().Create(ctx, &domain.Notification{
			UserID: "U1", Title: "aviso", Message: "m", Type: domain.NotificationSystem,
		}))
	}
	require.NoError(t, store.Notifications().Create(ctx, &domain.Notification{
		UserID: "U2", Title: "otro", Message: "m", Type: domain.NotificationSystem,
	}))

	list, err := uc.List(ctx, submitter, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Greater(t, list[0].ID, list[2].ID)

	page, err := uc.List(ctx, submitter, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	n, err := uc.CountUnread(ctx, submitter)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, uc.MarkAsRead(ctx, submitter, list[0].ID))
	require.NoError(t, uc.MarkAsRead(ctx, submitter, list[0].ID))

	n, err = uc.CountUnread(ctx, submitter)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	unread, err := uc.ListUnread(ctx, submitter, 10, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	err = uc.MarkAsRead(ctx, posOwner, list[1].ID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	_, err = uc.List(ctx, access.Principal{}, 10, 0)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestNormalizePage(t *testing.T) {
	l, o := normalizePage(0, -5)
	assert.Equal(t, DefaultPageSize, l)
	assert.Equal(t, 0, o)

	l, _ = normalizePage(10_000, 0)
	assert.Equal(t, MaxPageSize, l)
}

func TestUserAdministration(t *testing.T) {
	store := memory.New()
	sf, err := id.NewSnowflake(1)
	require.NoError(t, err)
	uc := NewUserUsecase(store, sf, zap.NewNop())
	ctx := context.Background()

	_, err = uc.Create(ctx, certifier, CreateUserRequest{Email: "x@y.cl", Password: "12345678", Role: domain.RoleVecino})
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	u, err := uc.Create(ctx, superadmin, CreateUserRequest{
		Email: "Nuevo@Notaria.cl", Password: "contraseña", Role: domain.RoleCertificador,
		FirstName: "Rosa", LastName: "Díaz", RUT: "7.654.321-6",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "nuevo@notaria.cl", u.Email)
	assert.NotEqual(t, "contraseña", u.PasswordHash)
	require.NotNil(t, u.RUT)
	assert.Equal(t, "7654321-6", *u.RUT)

	_, err = uc.Create(ctx, superadmin, CreateUserRequest{Email: "nuevo@notaria.cl", Password: "contraseña", Role: domain.RoleVecino})
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	bad := []CreateUserRequest{
		{Email: "no-es-correo", Password: "contraseña", Role: domain.RoleVecino},
		{Email: "a@b.cl", Password: "corta", Role: domain.RoleVecino},
		{Email: "a@b.cl", Password: "contraseña", Role: "notario"},
		{Email: "a@b.cl", Password: "contraseña", Role: domain.RoleVecino, RUT: "12345678-9"},
	}
	for _, req := range bad {
		_, err := uc.Create(ctx, superadmin, req)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput, "%+v", req)
	}

	toggled, err := uc.Toggle(ctx, superadmin, u.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	_, err = uc.Toggle(ctx, superadmin, superadmin.UserID)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	stats, err := uc.Stats(ctx, superadmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(0), stats.Active)
	assert.Equal(t, int64(1), stats.ByRole[domain.RoleCertificador])

	users, err := uc.List(ctx, superadmin)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
