package repository

import (
	"context"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
)

// Store aggregates the certification repositories behind one transactional boundary.
type Store interface {
	Users() UserRepository
	Documents() DocumentRepository
	POSLocations() POSLocationRepository
	Commissions() CommissionRepository
	Notifications() NotificationRepository
	Sessions() SessionRepository

	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithTx on a transactional Store reuses the open transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
	Stats(ctx context.Context) (*domain.UserStats, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	GetByQRCode(ctx context.Context, code string) (*domain.Document, error)
	ListAll(ctx context.Context) ([]*domain.Document, error)
	ListBySubmitter(ctx context.Context, submitterID string) ([]*domain.Document, error)
	// ListByCertificador returns documents assigned to the certifier that are
	// pending certification or already reviewed.
	ListByCertificador(ctx context.Context, certificadorID string) ([]*domain.Document, error)
	// ListPendingFor returns pending_certification documents that are unassigned
	// or assigned to the certifier.
	ListPendingFor(ctx context.Context, certificadorID string) ([]*domain.Document, error)
	// Transition sets the new status and merges the non-nil fields, but only if
	// the document is still in status from. Otherwise it returns ErrStateConflict.
	Transition(ctx context.Context, id int64, from domain.DocumentStatus, t domain.DocumentTransition) (*domain.Document, error)
	CountByStatus(ctx context.Context) (map[domain.DocumentStatus]int64, error)
}

type POSLocationRepository interface {
	Create(ctx context.Context, p *domain.POSLocation) error
	GetByID(ctx context.Context, id int64) (*domain.POSLocation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.POSLocation, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.POSLocation, error)
}

type CommissionRepository interface {
	Create(ctx context.Context, c *domain.Commission) error
	GetByDocument(ctx context.Context, documentID int64) (*domain.Commission, error)
	ListByParticipant(ctx context.Context, userID string) ([]*domain.Commission, error)
	ListUnpaid(ctx context.Context) ([]*domain.Commission, error)
	MarkPaid(ctx context.Context, id int64, paidAt time.Time) (*domain.Commission, error)
	Stats(ctx context.Context) (*domain.CommissionStats, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error)
	ListUnread(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, id int64, userID string) error
}

type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Revoke(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
