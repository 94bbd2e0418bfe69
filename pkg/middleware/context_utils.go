package middleware

import (
	"context"
	"net/http"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/pkg/jwtutil"
)

type contextKey string

const (
	ContextUserID    contextKey = "userID"
	ContextRole      contextKey = "role"
	ContextToken     contextKey = "token"
	ContextSessionID contextKey = "sessionID"
)

func GetUserID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextUserID).(string)
	return val, ok && val != ""
}

func GetSessionID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextSessionID).(string)
	return val, ok && val != ""
}

// PrincipalFrom returns the caller set by AuthMiddleware, or the anonymous principal.
func PrincipalFrom(ctx context.Context) access.Principal {
	userID, _ := ctx.Value(ContextUserID).(string)
	role, _ := ctx.Value(ContextRole).(domain.Role)
	return access.Principal{UserID: userID, Role: role}
}

func setContextValues(r *http.Request, claims *jwtutil.Claims, user *domain.User, token string) *http.Request {
	ctx := context.WithValue(r.Context(), ContextUserID, user.ID)
	ctx = context.WithValue(ctx, ContextRole, user.Role)
	ctx = context.WithValue(ctx, ContextToken, token)
	ctx = context.WithValue(ctx, ContextSessionID, claims.ID)
	return r.WithContext(ctx)
}
