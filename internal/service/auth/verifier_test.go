package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-api/internal/config"
)

// testKeySource serves a JWKS document for a generated RSA key and counts
// how often it is fetched.
type testKeySource struct {
	key     *rsa.PrivateKey
	kid     string
	server  *httptest.Server
	fetches atomic.Int64
}

func newTestKeySource(t *testing.T) *testKeySource {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "Failed to generate RSA key")

	src := &testKeySource{key: key, kid: "test-key-1"}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/jwks", func(w http.ResponseWriter, r *http.Request) {
		src.fetches.Add(1)
		doc := map[string]any{
			"keys": []map[string]string{
				{
					"kty": "RSA",
					"kid": src.kid,
					"use": "sig",
					"alg": "RS256",
					"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(doc))
	})

	src.server = httptest.NewServer(mux)
	t.Cleanup(src.server.Close)
	return src
}

// baseURL is the provider base URL, which tokens must carry as both
// audience and issuer.
func (s *testKeySource) baseURL() string {
	return s.server.URL
}

// signToken signs an RS256 token with the source's key, applying any
// claim overrides.
func (s *testKeySource) signToken(t *testing.T, mutate func(claims *jwt.RegisteredClaims, header map[string]interface{})) string {
	t.Helper()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		Audience:  jwt.ClaimStrings{s.baseURL()},
		Issuer:    s.baseURL(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, &claims)
	token.Header["kid"] = s.kid
	if mutate != nil {
		mutate(&claims, token.Header)
	}

	signed, err := token.SignedString(s.key)
	require.NoError(t, err, "Failed to sign test token")
	return signed
}

func (s *testKeySource) newVerifier(opts ...KeySetOption) TokenVerifier {
	keySet := NewKeySetClient(s.baseURL(), DefaultKeyRefreshInterval, nil, opts...)
	return NewTokenVerifier(config.AuthConfig{BaseURL: s.baseURL()}, keySet)
}

func TestVerifyValidToken(t *testing.T) {
	t.Parallel()

	src := newTestKeySource(t)
	verifier := src.newVerifier()

	userID, err := verifier.Verify(context.Background(), src.signToken(t, nil))

	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	t.Parallel()

	src := newTestKeySource(t)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       func(t *testing.T) string
		expectedErr error
	}{
		{
			name: "wrong audience despite valid signature",
			token: func(t *testing.T) string {
				return src.signToken(t, func(c *jwt.RegisteredClaims, _ map[string]interface{}) {
					c.Audience = jwt.ClaimStrings{"https://somewhere-else.example.com"}
				})
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				return src.signToken(t, func(c *jwt.RegisteredClaims, _ map[string]interface{}) {
					c.Issuer = "https://somewhere-else.example.com"
				})
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				return src.signToken(t, func(c *jwt.RegisteredClaims, _ map[string]interface{}) {
					c.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
					c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				})
			},
			expectedErr: ErrExpiredToken,
		},
		{
			name: "unknown key ID",
			token: func(t *testing.T) string {
				return src.signToken(t, func(_ *jwt.RegisteredClaims, header map[string]interface{}) {
					header["kid"] = "no-such-key"
				})
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "missing key ID",
			token: func(t *testing.T) string {
				return src.signToken(t, func(_ *jwt.RegisteredClaims, header map[string]interface{}) {
					delete(header, "kid")
				})
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "missing subject claim",
			token: func(t *testing.T) string {
				return src.signToken(t, func(c *jwt.RegisteredClaims, _ map[string]interface{}) {
					c.Subject = ""
				})
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "signature from a different key",
			token: func(t *testing.T) string {
				claims := jwt.RegisteredClaims{
					Subject:   "user-123",
					Audience:  jwt.ClaimStrings{src.baseURL()},
					Issuer:    src.baseURL(),
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				}
				token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
				token.Header["kid"] = src.kid
				signed, err := token.SignedString(otherKey)
				require.NoError(t, err)
				return signed
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "HMAC token rejected by allowed methods",
			token: func(t *testing.T) string {
				claims := jwt.RegisteredClaims{
					Subject:   "user-123",
					Audience:  jwt.ClaimStrings{src.baseURL()},
					Issuer:    src.baseURL(),
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				}
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
				token.Header["kid"] = src.kid
				signed, err := token.SignedString([]byte("shared-secret"))
				require.NoError(t, err)
				return signed
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			token: func(t *testing.T) string {
				return "not.a.token"
			},
			expectedErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := src.newVerifier()

			_, err := verifier.Verify(context.Background(), tt.token(t))

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestVerifyMissingToken(t *testing.T) {
	t.Parallel()

	src := newTestKeySource(t)
	verifier := src.newVerifier()

	_, err := verifier.Verify(context.Background(), "")

	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, int64(0), src.fetches.Load(), "empty token should not trigger a key fetch")
}

func TestVerifyKeySetUnavailable(t *testing.T) {
	t.Parallel()

	src := newTestKeySource(t)
	token := src.signToken(t, nil)

	// A verifier pointed at a dead endpoint but expecting the live
	// server's audience/issuer.
	dead := httptest.NewServer(http.NotFoundHandler())
	keySet := NewKeySetClient(dead.URL, DefaultKeyRefreshInterval, nil)
	verifier := NewTokenVerifier(config.AuthConfig{BaseURL: src.baseURL()}, keySet)
	dead.Close()

	_, err := verifier.Verify(context.Background(), token)

	assert.ErrorIs(t, err, ErrKeySetUnavailable)
}
