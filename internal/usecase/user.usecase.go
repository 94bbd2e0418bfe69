package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/pkg/id"
	"github.com/Houmeecl/pilotonotary-backend/pkg/rut"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type CreateUserRequest struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      domain.Role `json:"role"`
	RUT       string      `json:"rut"`
	Phone     string      `json:"phone"`
	Address   string      `json:"address"`
}

type UserUsecase struct {
	store  repository.Store
	ids    *id.Snowflake
	logger *zap.Logger
	now    func() time.Time
}

func NewUserUsecase(store repository.Store, ids *id.Snowflake, logger *zap.Logger) *UserUsecase {
	return &UserUsecase{store: store, ids: ids, logger: logger, now: time.Now}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (uc *UserUsecase) List(ctx context.Context, p access.Principal) ([]*domain.User, error) {
	if err := access.Require(p, access.HasRole(domain.RoleSuperadmin)); err != nil {
		return nil, err
	}
	return uc.store.Users().List(ctx)
}

// Create adds a user with a generated id. Only superadmins create accounts.
func (uc *UserUsecase) Create(ctx context.Context, p access.Principal, req CreateUserRequest) (*domain.User, error) {
	if err := access.Require(p, access.HasRole(domain.RoleSuperadmin)); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, xerrors.Invalid("invalid email address")
	}
	if !req.Role.Valid() {
		return nil, xerrors.Invalid("unknown role %q", req.Role)
	}
	if len(req.Password) < minPasswordLength {
		return nil, xerrors.Invalid("password must be at least %d characters", minPasswordLength)
	}

	u := &domain.User{
		ID:        uc.ids.Generate(),
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      req.Role,
		IsActive:  true,
		CreatedAt: uc.now().UTC(),
	}
	if req.RUT != "" {
		normalized, err := rut.Validate(req.RUT)
		if err != nil {
			return nil, xerrors.Invalid("invalid rut: %v", err)
		}
		u.RUT = &normalized
	}
	if v := strings.TrimSpace(req.Phone); v != "" {
		u.Phone = &v
	}
	if v := strings.TrimSpace(req.Address); v != "" {
		u.Address = &v
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	if err := uc.store.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	uc.logger.Info("user created",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
		zap.String("created_by", p.UserID))
	return u, nil
}

// Toggle activates or deactivates an account. Admins cannot lock themselves out.
func (uc *UserUsecase) Toggle(ctx context.Context, p access.Principal, userID string) (*domain.User, error) {
	if err := access.Require(p, access.HasRole(domain.RoleSuperadmin)); err != nil {
		return nil, err
	}
	if userID == p.UserID {
		return nil, xerrors.Invalid("cannot change your own active flag")
	}
	u, err := uc.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.store.Users().SetActive(ctx, userID, !u.IsActive)
}

func (uc *UserUsecase) Stats(ctx context.Context, p access.Principal) (*domain.UserStats, error) {
	if err := access.Require(p, access.HasRole(domain.RoleSuperadmin)); err != nil {
		return nil, err
	}
	return uc.store.Users().Stats(ctx)
}
