package repository

import (
	"context"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
)

const userColumns = `
	id, email, COALESCE(first_name, ''), COALESCE(last_name, ''), profile_image_url, role,
	rut, phone, address, is_active, COALESCE(password_hash, ''), created_at, updated_at`

type userRepo struct {
	db DBTX
}

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL, &u.Role,
		&u.RUT, &u.Phone, &u.Address, &u.IsActive, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create implements UserRepository.
func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users
		  (id, email, first_name, last_name, profile_image_url, role, rut, phone, address,
		   is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.ProfileImageURL, u.Role, u.RUT, u.Phone, u.Address,
		u.IsActive, u.PasswordHash, u.CreatedAt,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return wrap("user", err)
}

// GetByID implements UserRepository.
func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("user", err)
	}
	return u, nil
}

// GetByEmail implements UserRepository.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, wrap("user", err)
	}
	return u, nil
}

// List implements UserRepository.
func (r *userRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrap("users", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap("users", err)
		}
		users = append(users, u)
	}
	return users, wrap("users", rows.Err())
}

// SetActive implements UserRepository.
func (r *userRepo) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	query := `
		UPDATE users
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, id, active))
	if err != nil {
		return nil, wrap("user", err)
	}
	return u, nil
}

// Stats implements UserRepository.
func (r *userRepo) Stats(ctx context.Context) (*domain.UserStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT role, COUNT(*), COUNT(*) FILTER (WHERE is_active)
		FROM users
		GROUP BY role`)
	if err != nil {
		return nil, wrap("user stats", err)
	}
	defer rows.Close()

	st := &domain.UserStats{ByRole: make(map[domain.Role]int64)}
	for rows.Next() {
		var (
			role          domain.Role
			total, active int64
		)
		if err := rows.Scan(&role, &total, &active); err != nil {
			return nil, wrap("user stats", err)
		}
		st.ByRole[role] = total
		st.Total += total
		st.Active += active
	}
	return st, wrap("user stats", rows.Err())
}
