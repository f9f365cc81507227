package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/oursapp/ours/internal/cache"
	"github.com/oursapp/ours/internal/metrics"
)

const (
	// DefaultURLTTL is the lifetime of read and upload URLs unless configured otherwise.
	DefaultURLTTL = 300 * time.Second

	// MinURLTTL is the shortest read URL lifetime a caller may ask for.
	MinURLTTL = 60 * time.Second

	// cacheMargin keeps a cached URL from outliving its signature.
	cacheMargin = 10 * time.Second

	cacheKeyPrefix = "presigned:"
)

// SignedURLProvider hands out presigned URLs. Read URLs are cached by object
// key so repeated renders of the same image cost no signing call. Upload URLs
// and deletes always go straight to the store.
//
// Two concurrent misses for the same key both sign; the last one written wins
// the cache slot.
type SignedURLProvider struct {
	store      ObjectStore
	cache      cache.URLStore
	defaultTTL time.Duration
}

// NewSignedURLProvider panics if defaultTTL is set below MinURLTTL.
// A zero defaultTTL means DefaultURLTTL.
func NewSignedURLProvider(store ObjectStore, urls cache.URLStore, defaultTTL time.Duration) *SignedURLProvider {
	if defaultTTL == 0 {
		defaultTTL = DefaultURLTTL
	}
	mustValidTTL(defaultTTL)

	return &SignedURLProvider{
		store:      store,
		cache:      urls,
		defaultTTL: defaultTTL,
	}
}

func mustValidTTL(ttl time.Duration) {
	if ttl < MinURLTTL {
		panic(fmt.Sprintf("storage: signed url ttl must be at least %s, got %s", MinURLTTL, ttl))
	}
}

// SignedURL returns a read URL for objectKey. An optional ttl overrides the
// default; passing one below MinURLTTL panics.
func (p *SignedURLProvider) SignedURL(ctx context.Context, objectKey string, ttl ...time.Duration) (string, error) {
	expiry := p.defaultTTL
	if len(ttl) > 0 {
		mustValidTTL(ttl[0])
		expiry = ttl[0]
	}

	cacheKey := cacheKeyPrefix + objectKey
	if url, ok := p.cache.Get(ctx, cacheKey); ok {
		metrics.SignedURLCacheTotal.WithLabelValues("hit").Inc()
		return url, nil
	}
	metrics.SignedURLCacheTotal.WithLabelValues("miss").Inc()

	url, err := p.store.PresignGet(ctx, objectKey, expiry)
	if err != nil {
		metrics.StorageOpsTotal.WithLabelValues("presign_get", "error").Inc()
		return "", err
	}
	metrics.StorageOpsTotal.WithLabelValues("presign_get", "ok").Inc()

	p.cache.Set(ctx, cacheKey, url, max(expiry-cacheMargin, MinURLTTL))
	return url, nil
}

// UploadURL returns a fresh write URL for objectKey. It is never cached.
func (p *SignedURLProvider) UploadURL(ctx context.Context, objectKey string) (string, error) {
	url, err := p.store.PresignPut(ctx, objectKey, p.defaultTTL)
	if err != nil {
		metrics.StorageOpsTotal.WithLabelValues("presign_put", "error").Inc()
		return "", err
	}
	metrics.StorageOpsTotal.WithLabelValues("presign_put", "ok").Inc()
	return url, nil
}

// Delete drops the cached read URL and removes the object.
func (p *SignedURLProvider) Delete(ctx context.Context, objectKey string) error {
	p.cache.Delete(ctx, cacheKeyPrefix+objectKey)

	err := p.store.Delete(ctx, objectKey)
	if err != nil {
		metrics.StorageOpsTotal.WithLabelValues("delete", "error").Inc()
		return err
	}
	metrics.StorageOpsTotal.WithLabelValues("delete", "ok").Inc()
	return nil
}
