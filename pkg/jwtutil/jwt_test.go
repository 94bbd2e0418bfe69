package jwtutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestGenerateAndVerify(t *testing.T) {
	key := newKey(t)
	gen := NewGenerator(key, "iss", "aud", "k1", time.Hour)
	ver := NewVerifier(&key.PublicKey, "iss", "aud", "k1")

	now := time.Now()
	tok, exp, err := gen.Generate("U1", "vecino", "u1@notaria.cl", "01JTI", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	claims, err := ver.ParseAndValidate(tok)
	require.NoError(t, err)
	assert.Equal(t, "U1", claims.UserID)
	assert.Equal(t, "vecino", claims.Role)
	assert.Equal(t, "01JTI", claims.ID)
}

func TestVerifyRejects(t *testing.T) {
	key := newKey(t)
	ver := NewVerifier(&key.PublicKey, "iss", "aud", "")
	now := time.Now()

	expired, _, err := NewGenerator(key, "iss", "aud", "", time.Minute).Generate("U1", "vecino", "", "j", now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = ver.ParseAndValidate(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongAud, _, err := NewGenerator(key, "iss", "other", "", time.Hour).Generate("U1", "vecino", "", "j", now)
	require.NoError(t, err)
	_, err = ver.ParseAndValidate(wrongAud)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noJTI, _, err := NewGenerator(key, "iss", "aud", "", time.Hour).Generate("U1", "vecino", "", "", now)
	require.NoError(t, err)
	_, err = ver.ParseAndValidate(noJTI)
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged, _, err := NewGenerator(newKey(t), "iss", "aud", "", time.Hour).Generate("U1", "vecino", "", "j", now)
	require.NoError(t, err)
	_, err = ver.ParseAndValidate(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoadAndBuildDerivesPublicKey(t *testing.T) {
	key := newKey(t)
	path := filepath.Join(t.TempDir(), "jwt_private.pem")
	der := x509.MarshalPKCS1PrivateKey(key)
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}), 0o600))

	gen, ver, err := LoadAndBuild(JWTConfig{PrivPath: path, Issuer: "iss", Audience: "aud"}, time.Hour)
	require.NoError(t, err)

	tok, _, err := gen.Generate("U1", "superadmin", "", "j", time.Now())
	require.NoError(t, err)
	_, err = ver.ParseAndValidate(tok)
	assert.NoError(t, err)
}
