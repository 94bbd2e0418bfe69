package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/pkg/jwtutil"
	"github.com/Houmeecl/pilotonotary-backend/pkg/response"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"go.uber.org/zap"
)

// Authenticator resolves verified claims to an active user with a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, claims *jwtutil.Claims) (*domain.User, error)
}

type AuthMiddleware struct {
	verifier *jwtutil.Verifier
	auth     Authenticator
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier *jwtutil.Verifier, auth Authenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, auth: auth, logger: logger}
}

// Handle verifies the bearer token, checks the session and loads the user.
// A missing or inactive account is refused with 403.
func (am *AuthMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized, "No token provided")
			return
		}

		claims, err := am.verifier.ParseAndValidate(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := am.auth.Authenticate(r.Context(), claims)
		if err != nil {
			status := xerrors.HTTPStatus(err)
			switch {
			case errors.Is(err, xerrors.ErrAccountInactive):
				response.Error(w, http.StatusForbidden, "User not found or inactive")
			case status < http.StatusInternalServerError:
				response.Error(w, status, err.Error())
			default:
				am.logger.Error("authentication failed", zap.String("user_id", claims.UserID), zap.Error(err))
				response.Error(w, status, "Session validation failed")
			}
			return
		}

		next.ServeHTTP(w, setContextValues(r, claims, user, token))
	})
}

// RequireRoles lets the request through only for the listed roles.
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	gate := access.HasRole(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFrom(r.Context())
			if err := access.Require(p, gate); err != nil {
				if errors.Is(err, xerrors.ErrUnauthorized) {
					response.Error(w, http.StatusUnauthorized, "Authentication required")
					return
				}
				response.Error(w, http.StatusForbidden, "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
