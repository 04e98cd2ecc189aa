package jwt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Cache stores raw key set documents. Any Get error is treated as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// KeySet resolves signing keys from a JWKS endpoint. The raw document is
// cached for ttl; an unknown kid forces one refetch so rotated keys are
// picked up.
type KeySet struct {
	url    string
	cache  Cache
	ttl    time.Duration
	client *http.Client
	logger *zap.Logger

	mu sync.RWMutex
	kf keyfunc.Keyfunc
}

// NewKeySet creates a KeySet. cache may be nil.
func NewKeySet(url string, cache Cache, ttl time.Duration, logger *zap.Logger) *KeySet {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &KeySet{
		url:    url,
		cache:  cache,
		ttl:    ttl,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (k *KeySet) cacheKey() string {
	return "jwks:" + k.url
}

// Keyfunc returns a jwt.Keyfunc resolving the token's kid against the set
func (k *KeySet) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if kid, _ := token.Header[jwkset.HeaderKID].(string); kid == "" {
			return nil, fmt.Errorf("token has no kid header")
		}

		kf, err := k.current(ctx)
		if err != nil {
			return nil, err
		}
		key, err := kf.KeyfuncCtx(ctx)(token)
		if !errors.Is(err, jwkset.ErrKeyNotFound) {
			return key, err
		}

		// kid unknown to the cached document: the tenant may have rotated keys
		if kf, err = k.load(ctx, true); err != nil {
			return nil, err
		}
		return kf.KeyfuncCtx(ctx)(token)
	}
}

func (k *KeySet) current(ctx context.Context) (keyfunc.Keyfunc, error) {
	k.mu.RLock()
	kf := k.kf
	k.mu.RUnlock()
	if kf != nil {
		return kf, nil
	}
	return k.load(ctx, false)
}

func (k *KeySet) load(ctx context.Context, bypassCache bool) (keyfunc.Keyfunc, error) {
	var raw string
	if k.cache != nil && !bypassCache {
		if cached, err := k.cache.Get(ctx, k.cacheKey()); err == nil {
			raw = cached
		}
	}

	if raw == "" {
		fetched, err := k.fetch(ctx)
		if err != nil {
			return nil, err
		}
		raw = fetched
		if k.cache != nil {
			if err := k.cache.Set(ctx, k.cacheKey(), raw, k.ttl); err != nil {
				k.logger.Warn("⚠️ Failed to cache signing keys", zap.Error(err))
			}
		}
	}

	kf, err := keyfunc.NewJWKSetJSON([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode signing keys: %w", err)
	}
	k.mu.Lock()
	k.kf = kf
	k.mu.Unlock()
	return kf, nil
}

func (k *KeySet) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := k.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch signing keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch signing keys: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read signing keys: %w", err)
	}
	k.logger.Info("🔑 Signing keys fetched", zap.String("url", k.url))
	return string(body), nil
}
