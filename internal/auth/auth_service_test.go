package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func sign(t *testing.T, key *rsa.PrivateKey, claims TokenClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() TokenClaims {
	now := time.Now()
	return TokenClaims{
		Email: "jane@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://auth.example.com",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	key, pub := newKeyPair(t)
	v, err := NewVerifier(pub, "https://auth.example.com", "authenticated")
	require.NoError(t, err)

	claims, err := v.ValidateToken(sign(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	key, pub := newKeyPair(t)
	other, _ := newKeyPair(t)
	v, err := NewVerifier(pub, "https://auth.example.com", "authenticated")
	require.NoError(t, err)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://evil.example.com"
	noSubject := validClaims()
	noSubject.Subject = ""
	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"expired":      sign(t, key, expired),
		"wrong issuer": sign(t, key, wrongIssuer),
		"no subject":   sign(t, key, noSubject),
		"no expiry":    sign(t, key, noExpiry),
		"foreign key":  sign(t, other, validClaims()),
		"hmac":         hs,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewVerifierRejectsBadKey(t *testing.T) {
	_, err := NewVerifier(nil, "", "")
	assert.Error(t, err)
	_, err = NewVerifier([]byte("-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n"), "", "")
	assert.Error(t, err)
}
