// Package auth verifies bearer tokens against an external identity
// provider's published signing keys. The server issues no tokens and holds
// no session state; authentication is fully stateless per request.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/phrazzld/todo-api/internal/platform/logger"
	"golang.org/x/sync/singleflight"
)

// DefaultKeyRefreshInterval is the freshness window for cached key material.
const DefaultKeyRefreshInterval = 5 * time.Minute

// jwksPath is the well-known path of the provider's key-set endpoint,
// relative to the configured base URL.
const jwksPath = "/api/auth/jwks"

// jwk is the subset of an RFC 7517 JSON Web Key this verifier understands.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// jwkSet mirrors the {"keys": [...]} document served by the provider.
type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// cachedKeySet is an immutable snapshot of parsed key material together
// with the time it was fetched. Snapshots are replaced wholesale, never
// mutated, so readers need no lock once they hold one.
type cachedKeySet struct {
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// KeySetClient fetches and caches the identity provider's signing keys.
//
// The cache is an explicitly timestamped snapshot guarded by a RWMutex,
// and refreshes run under a singleflight group so concurrent expiries
// produce a single upstream fetch.
type KeySetClient struct {
	url        string
	ttl        time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	timeFunc   func() time.Time // Injectable for testing

	mu     sync.RWMutex
	cached *cachedKeySet
	group  singleflight.Group
}

// KeySetOption customizes a KeySetClient.
type KeySetOption func(*KeySetClient)

// WithHTTPClient overrides the HTTP client used for key-set fetches.
func WithHTTPClient(c *http.Client) KeySetOption {
	return func(k *KeySetClient) { k.httpClient = c }
}

// WithTimeFunc overrides the clock, for tests exercising cache expiry.
func WithTimeFunc(f func() time.Time) KeySetOption {
	return func(k *KeySetClient) { k.timeFunc = f }
}

// NewKeySetClient creates a client for the key-set endpoint derived from
// baseURL. A non-positive ttl falls back to DefaultKeyRefreshInterval.
// If log is nil, the default logger is used.
func NewKeySetClient(baseURL string, ttl time.Duration, log *slog.Logger, opts ...KeySetOption) *KeySetClient {
	if ttl <= 0 {
		ttl = DefaultKeyRefreshInterval
	}
	if log == nil {
		log = slog.Default()
	}

	c := &KeySetClient{
		url:        baseURL + jwksPath,
		ttl:        ttl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.With(slog.String("component", "keyset_client")),
		timeFunc:   time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Key returns the RSA public key with the given key ID, refreshing the
// cached set first if it is missing or stale.
// Returns ErrInvalidToken if the set holds no such key, or
// ErrKeySetUnavailable if a needed refresh fails.
func (c *KeySetClient) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	snapshot, err := c.keySet(ctx)
	if err != nil {
		return nil, err
	}

	key, ok := snapshot.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: signing key %q not found", ErrInvalidToken, kid)
	}
	return key, nil
}

// keySet returns a fresh snapshot, fetching from the provider when the
// cached one is absent or older than the freshness window.
func (c *KeySetClient) keySet(ctx context.Context) (*cachedKeySet, error) {
	c.mu.RLock()
	snapshot := c.cached
	c.mu.RUnlock()

	if snapshot != nil && c.timeFunc().Sub(snapshot.fetchedAt) < c.ttl {
		return snapshot, nil
	}

	// One fetch per expiry, however many requests hit it at once.
	result, err, _ := c.group.Do("refresh", func() (any, error) {
		// A concurrent caller may have refreshed while we waited.
		c.mu.RLock()
		current := c.cached
		c.mu.RUnlock()
		if current != nil && c.timeFunc().Sub(current.fetchedAt) < c.ttl {
			return current, nil
		}
		// The fetch serves every coalesced waiter, so it must not die with
		// the first waiter's request. The HTTP client timeout still bounds it.
		return c.fetch(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}

	return result.(*cachedKeySet), nil
}

// fetch retrieves and parses the key set, replacing the cache atomically.
func (c *KeySetClient) fetch(ctx context.Context) (*cachedKeySet, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("key set fetch failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Error("key set endpoint returned non-OK status",
			slog.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("%w: endpoint returned status %d",
			ErrKeySetUnavailable, resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		log.Error("failed to decode key set document", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			// Skip unparseable keys rather than failing the whole set.
			log.Warn("skipping unparseable key",
				slog.String("kid", k.Kid),
				slog.String("error", err.Error()))
			continue
		}
		keys[k.Kid] = pub
	}

	snapshot := &cachedKeySet{
		keys:      keys,
		fetchedAt: c.timeFunc(),
	}

	c.mu.Lock()
	c.cached = snapshot
	c.mu.Unlock()

	log.Debug("key set refreshed", slog.Int("key_count", len(keys)))
	return snapshot, nil
}

// parseRSAKey converts a JWK's base64url modulus and exponent into an
// rsa.PublicKey.
func parseRSAKey(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() <= 0 {
		return nil, fmt.Errorf("exponent out of range")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}
