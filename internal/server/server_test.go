package server

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/config"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/events"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository/memory"
	"github.com/Houmeecl/pilotonotary-backend/internal/usecase"
	"github.com/Houmeecl/pilotonotary-backend/pkg/jwtutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const password = "s3cret-pass"

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t   *testing.T
	srv *httptest.Server
}

func (c *apiClient) do(method, path, token string, body any) (int, envelope) {
	c.t.Helper()

	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.srv.URL+path, rd)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func (c *apiClient) login(email string) string {
	c.t.Helper()
	code, env := c.do(http.MethodPost, "/api/auth/login", "", usecase.LoginRequest{Email: email, Password: password})
	require.Equal(c.t, http.StatusOK, code, env.Message)

	var res usecase.LoginResult
	require.NoError(c.t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(c.t, res.Token)
	return res.Token
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()
	ctx := context.Background()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	store := memory.New()
	hash, err := usecase.HashPassword(password)
	require.NoError(t, err)

	vecinoRUT := "12345678-5"
	for _, u := range []*domain.User{
		{ID: "U1", Email: "vecino@notaria.cl", Role: domain.RoleVecino, RUT: &vecinoRUT},
		{ID: "C1", Email: "cert@notaria.cl", Role: domain.RoleCertificador},
		{ID: "A1", Email: "admin@notaria.cl", Role: domain.RoleSuperadmin},
	} {
		u.PasswordHash = hash
		u.IsActive = true
		u.CreatedAt = time.Now().UTC()
		require.NoError(t, store.Users().Create(ctx, u))
	}

	app, err := Build(Deps{
		Config:    config.AppConfig{SnowflakeNode: 1, AllowedOrigins: []string{"*"}},
		Store:     store,
		Publisher: events.Discard{},
		Tokens:    jwtutil.NewGenerator(key, "test", "test-web", "", time.Hour),
		Verifier:  jwtutil.NewVerifier(&key.PublicKey, "test", "test-web", ""),
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler)
	t.Cleanup(srv.Close)
	return &apiClient{t: t, srv: srv}
}

func TestCertificationFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	vecino := api.login("vecino@notaria.cl")
	cert := api.login("cert@notaria.cl")

	code, env := api.do(http.MethodPost, "/api/documents", vecino, map[string]any{
		"title": "Declaración jurada de domicilio",
		"type":  "declaracion_jurada",
		"price": 10000,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var doc domain.Document
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Equal(t, domain.StatusPendingVerification, doc.Status)
	assert.NotEmpty(t, doc.QRValidationCode)

	code, env = api.do(http.MethodPost, "/api/verify-identity", vecino, usecase.VerifyIdentityRequest{DocumentID: doc.ID, RUT: "11111111-1"})
	assert.Equal(t, http.StatusBadRequest, code, env.Message)

	code, env = api.do(http.MethodPost, "/api/verify-identity", vecino, usecase.VerifyIdentityRequest{DocumentID: doc.ID, RUT: "12.345.678-5"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = api.do(http.MethodGet, "/api/documents/pending", vecino, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodGet, "/api/documents/pending", cert, nil)
	require.Equal(t, http.StatusOK, code)
	var pending []domain.Document
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.Len(t, pending, 1)

	path := fmt.Sprintf("/api/documents/%d/certify", doc.ID)

	code, _ = api.do(http.MethodPatch, path, cert, map[string]string{"action": "reject"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodPatch, path, cert, map[string]string{"action": "certify", "signature": "sig-C1"})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Document certified", env.Message)

	var res usecase.ReviewResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, domain.StatusCertified, res.Document.Status)
	require.NotNil(t, res.Commission)
	assert.Equal(t, "4000", res.Commission.VecinoAmount.String())
	assert.Equal(t, "3500", res.Commission.CertificadorAmount.String())
	assert.Equal(t, "2500", res.Commission.AdminAmount.String())
	assert.Equal(t, "U1", res.Commission.VecinoID)
	assert.Empty(t, res.NotificationError)

	code, _ = api.do(http.MethodPatch, path, cert, map[string]string{"action": "certify"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = api.do(http.MethodGet, "/api/validate/"+doc.QRValidationCode, "", nil)
	require.Equal(t, http.StatusOK, code)
	var public domain.PublicDocument
	require.NoError(t, json.Unmarshal(env.Data, &public))
	assert.Equal(t, domain.StatusCertified, public.Status)
	assert.True(t, public.Signed)

	code, env = api.do(http.MethodGet, "/api/notifications/unread", vecino, nil)
	require.Equal(t, http.StatusOK, code)
	var unread []domain.Notification
	require.NoError(t, json.Unmarshal(env.Data, &unread))
	require.NotEmpty(t, unread)
	assert.Contains(t, unread[0].Message, doc.QRValidationCode)

	code, _ = api.do(http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", unread[0].ID), vecino, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, env = api.do(http.MethodGet, "/api/commissions", cert, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []domain.Commission
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)
}

func TestAuthAndErrorStatuses(t *testing.T) {
	api := newTestAPI(t)

	code, _ := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodGet, "/api/documents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodGet, "/api/documents", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodPost, "/api/auth/login", "", usecase.LoginRequest{Email: "vecino@notaria.cl", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodPost, "/api/admin/login", "", usecase.LoginRequest{Email: "cert@notaria.cl", Password: password})
	assert.Equal(t, http.StatusUnauthorized, code)

	vecino := api.login("vecino@notaria.cl")

	code, _ = api.do(http.MethodPost, "/api/documents", vecino, "{not json")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodGet, "/api/documents/abc", vecino, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodGet, "/api/documents/999", vecino, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do(http.MethodGet, "/api/analytics/documents", vecino, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodPatch, "/api/notifications/42/read", vecino, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do(http.MethodPost, "/api/auth/logout", vecino, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodGet, "/api/auth/me", vecino, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminEndpoints(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@notaria.cl")

	code, env := api.do(http.MethodPost, "/api/admin/users", admin, usecase.CreateUserRequest{
		Email:    "nuevo@notaria.cl",
		Password: "longenough",
		Role:     domain.RoleCertificador,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, _ = api.do(http.MethodPost, "/api/admin/users", admin, usecase.CreateUserRequest{
		Email:    "nuevo@notaria.cl",
		Password: "longenough",
		Role:     domain.RoleCertificador,
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = api.do(http.MethodGet, "/api/analytics/documents", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var stats domain.DocumentStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Zero(t, stats.Total)

	code, _ = api.do(http.MethodPatch, "/api/admin/commissions/77/pay", admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
