package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/pkg/id"
	"github.com/Houmeecl/pilotonotary-backend/pkg/jwtutil"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionNamespace = "session_tokens"

// SessionCache keeps active session ids close to the auth middleware.
type SessionCache interface {
	Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, namespace, key string) (string, error)
	Delete(ctx context.Context, namespace, key string) error
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type AuthUsecase struct {
	store  repository.Store
	tokens *jwtutil.Generator
	cache  SessionCache
	ids    *id.ULIDSource
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthUsecase(store repository.Store, tokens *jwtutil.Generator, cache SessionCache, ids *id.ULIDSource, logger *zap.Logger) *AuthUsecase {
	return &AuthUsecase{store: store, tokens: tokens, cache: cache, ids: ids, logger: logger, now: time.Now}
}

// Login checks the credentials and opens a session. With adminOnly set only
// superadmins may log in.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest, adminOnly bool) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, xerrors.Invalid("email and password are required")
	}

	user, err := uc.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, xerrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, xerrors.ErrAccountInactive
	}
	if adminOnly && user.Role != domain.RoleSuperadmin {
		return nil, xerrors.ErrInvalidCredentials
	}

	now := uc.now().UTC()
	jti := uc.ids.TokenID(now)
	token, expiresAt, err := uc.tokens.Generate(user.ID, string(user.Role), user.Email, jti, now)
	if err != nil {
		return nil, err
	}

	sess := &domain.Session{ID: jti, UserID: user.ID, CreatedAt: now, ExpiresAt: expiresAt}
	if err := uc.store.Sessions().Create(ctx, sess); err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, sessionNamespace, jti, user.ID, expiresAt.Sub(now)); err != nil {
			uc.logger.Warn("session cache write failed", zap.String("session_id", jti), zap.Error(err))
		}
	}

	uc.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Bool("admin", adminOnly))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (uc *AuthUsecase) Logout(ctx context.Context, p access.Principal, sessionID string) error {
	if err := access.Require(p); err != nil {
		return err
	}
	if err := uc.store.Sessions().Revoke(ctx, sessionID); err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return err
	}
	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, sessionNamespace, sessionID); err != nil {
			uc.logger.Warn("session cache delete failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return nil
}

// Authenticate resolves verified token claims to an active user. The session
// is looked up in the cache first and in the store on a miss.
func (uc *AuthUsecase) Authenticate(ctx context.Context, claims *jwtutil.Claims) (*domain.User, error) {
	if !uc.sessionActive(ctx, claims.ID, claims.UserID) {
		return nil, xerrors.ErrSessionRevoked
	}

	user, err := uc.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrAccountInactive
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, xerrors.ErrAccountInactive
	}
	return user, nil
}

func (uc *AuthUsecase) sessionActive(ctx context.Context, sessionID, userID string) bool {
	if uc.cache != nil {
		if owner, err := uc.cache.Get(ctx, sessionNamespace, sessionID); err == nil {
			return owner == userID
		}
	}

	sess, err := uc.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			uc.logger.Error("session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		return false
	}
	now := uc.now()
	if sess.UserID != userID || !sess.Active(now) {
		return false
	}
	if uc.cache != nil {
		_ = uc.cache.Set(ctx, sessionNamespace, sessionID, userID, sess.ExpiresAt.Sub(now))
	}
	return true
}

func (uc *AuthUsecase) Me(ctx context.Context, p access.Principal) (*domain.User, error) {
	if err := access.Require(p); err != nil {
		return nil, err
	}
	return uc.store.Users().GetByID(ctx, p.UserID)
}

// PurgeSessions drops sessions that expired or were revoked before the cutoff.
func (uc *AuthUsecase) PurgeSessions(ctx context.Context, before time.Time) (int64, error) {
	return uc.store.Sessions().DeleteExpired(ctx, before)
}
