package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/pkg/jwtutil"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAuth struct {
	user *domain.User
	err  error
}

func (s stubAuth) Authenticate(context.Context, *jwtutil.Claims) (*domain.User, error) {
	return s.user, s.err
}

func signer(t *testing.T) (*jwtutil.Generator, *jwtutil.Verifier) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return jwtutil.NewGenerator(key, "iss", "aud", "", time.Hour),
		jwtutil.NewVerifier(&key.PublicKey, "iss", "aud", "")
}

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFrom(r.Context())
	sid, _ := GetSessionID(r.Context())
	w.Header().Set("X-User", p.UserID)
	w.Header().Set("X-Role", string(p.Role))
	w.Header().Set("X-Session", sid)
	w.WriteHeader(http.StatusNoContent)
}

func TestExtractTokenSources(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?token=from-query", nil)
	assert.Empty(t, extractToken(r))

	r.Header.Set("Upgrade", "websocket")
	assert.Equal(t, "from-query", extractToken(r))

	r.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", extractToken(r))

	r.Header.Set("Authorization", "bearer from-header")
	assert.Equal(t, "from-header", extractToken(r))
}

func TestAuthMiddleware(t *testing.T) {
	gen, ver := signer(t)
	token, _, err := gen.Generate("U1", "vecino", "u1@example.cl", "sess-1", time.Now())
	require.NoError(t, err)

	active := &domain.User{ID: "U1", Role: domain.RoleVecino, IsActive: true}

	cases := []struct {
		name   string
		auth   stubAuth
		header string
		want   int
	}{
		{"no token", stubAuth{user: active}, "", http.StatusUnauthorized},
		{"garbage token", stubAuth{user: active}, "Bearer nope", http.StatusUnauthorized},
		{"revoked session", stubAuth{err: xerrors.ErrSessionRevoked}, "Bearer " + token, http.StatusUnauthorized},
		{"inactive user", stubAuth{err: xerrors.ErrAccountInactive}, "Bearer " + token, http.StatusForbidden},
		{"store down", stubAuth{err: xerrors.ErrDependency}, "Bearer " + token, http.StatusServiceUnavailable},
		{"ok", stubAuth{user: active}, "Bearer " + token, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthMiddleware(ver, tc.auth, zap.NewNop()).Handle(http.HandlerFunc(echoPrincipal))
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusNoContent {
				assert.Equal(t, "U1", w.Header().Get("X-User"))
				assert.Equal(t, "vecino", w.Header().Get("X-Role"))
				assert.Equal(t, "sess-1", w.Header().Get("X-Session"))
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	h := RequireRoles(domain.RoleCertificador)(http.HandlerFunc(echoPrincipal))

	serve := func(ctx context.Context) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	anon := context.Background()
	assert.Equal(t, http.StatusUnauthorized, serve(anon))

	vecino := context.WithValue(context.WithValue(anon, ContextUserID, "U1"), ContextRole, domain.RoleVecino)
	assert.Equal(t, http.StatusForbidden, serve(vecino))

	cert := context.WithValue(context.WithValue(anon, ContextUserID, "C1"), ContextRole, domain.RoleCertificador)
	assert.Equal(t, http.StatusNoContent, serve(cert))
}

func TestRateLimiterWithoutRedisIsPassThrough(t *testing.T) {
	h := RateLimiter(nil, 1, time.Minute, time.Minute, "login", nil)(http.HandlerFunc(echoPrincipal))
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
