package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/todo-api/internal/config"
	"github.com/phrazzld/todo-api/internal/platform/logger"
)

// TokenVerifier establishes the caller's identity from a bearer token.
type TokenVerifier interface {
	// Verify validates the token and returns the subject claim as the
	// stable user identifier. Returns ErrExpiredToken for expired tokens
	// and ErrInvalidToken for every other verification failure; key-set
	// fetch failures surface as ErrKeySetUnavailable.
	Verify(ctx context.Context, tokenString string) (string, error)
}

// jwksVerifier is an implementation of TokenVerifier that checks RS256
// signatures against the identity provider's published key set.
type jwksVerifier struct {
	keySet   *KeySetClient
	baseURL  string           // Required audience and issuer
	timeFunc func() time.Time // Injectable for testing
}

// Ensure jwksVerifier implements TokenVerifier interface
var _ TokenVerifier = (*jwksVerifier)(nil)

// VerifierOption customizes a jwksVerifier.
type VerifierOption func(*jwksVerifier)

// WithVerifierTimeFunc overrides the clock used for time-claim validation.
func WithVerifierTimeFunc(f func() time.Time) VerifierOption {
	return func(v *jwksVerifier) { v.timeFunc = f }
}

// NewTokenVerifier creates a TokenVerifier backed by the given key-set
// client. The configured base URL doubles as the required audience and
// issuer of every accepted token.
func NewTokenVerifier(cfg config.AuthConfig, keySet *KeySetClient, opts ...VerifierOption) TokenVerifier {
	v := &jwksVerifier{
		keySet:   keySet,
		baseURL:  cfg.BaseURL,
		timeFunc: time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Verify implements TokenVerifier.Verify.
func (v *jwksVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return "", ErrMissingToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		jwt.WithAudience(v.baseURL),
		jwt.WithIssuer(v.baseURL),
		jwt.WithTimeFunc(v.timeFunc),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, fmt.Errorf("%w: token header has no key ID", ErrInvalidToken)
			}
			return v.keySet.Key(ctx, kid)
		},
		parserOpts...)

	if err != nil {
		// Key-set fetch failures keep their own sentinel; callers still
		// translate them to 401 alongside token errors.
		if errors.Is(err, ErrKeySetUnavailable) {
			return "", err
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: token expired", "error", err)
			return "", ErrExpiredToken
		}
		log.Debug("token validation failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		log.Debug("token validation failed: no subject claim")
		return "", fmt.Errorf("%w: no subject claim", ErrInvalidToken)
	}

	return claims.Subject, nil
}
