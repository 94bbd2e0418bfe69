package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the part of *pgxpool.Pool the store needs.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

type scanner interface {
	Scan(dest ...any) error
}

type pgStore struct {
	pool Pool // nil inside a transaction
	db   DBTX
}

func NewStore(pool Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Users() UserRepository                 { return &userRepo{db: s.db} }
func (s *pgStore) Documents() DocumentRepository         { return &documentRepo{db: s.db} }
func (s *pgStore) POSLocations() POSLocationRepository   { return &posRepo{db: s.db} }
func (s *pgStore) Commissions() CommissionRepository     { return &commissionRepo{db: s.db} }
func (s *pgStore) Notifications() NotificationRepository { return &notificationRepo{db: s.db} }
func (s *pgStore) Sessions() SessionRepository           { return &sessionRepo{db: s.db} }

func (s *pgStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", xerrors.FromPG(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgStore{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", xerrors.FromPG(err))
	}
	return nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrDependency, err)
	}
	return nil
}

// wrap maps pgx.ErrNoRows to ErrNotFound for the entity and classifies driver errors.
func wrap(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %w", entity, xerrors.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", entity, xerrors.FromPG(err))
}
