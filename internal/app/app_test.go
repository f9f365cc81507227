package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/oursapp/ours/internal/cache"
	"github.com/oursapp/ours/internal/config"
	"github.com/oursapp/ours/internal/storage"
	"github.com/oursapp/ours/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                "test",
		URLCacheTTL:           2 * time.Minute,
		SessionExpiry:         30 * 24 * time.Hour,
		InviteExpiry:          7 * 24 * time.Hour,
		GalleryMaxPhotos:      10,
		AuthThrottleIntervals: []time.Duration{time.Second},
		APIRatePerSec:         10,
		APIRateBurst:          10,
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		want   string
	}{
		{"url ttl below minimum", func(c *config.Config) { c.URLCacheTTL = 30 * time.Second }, "URL_CACHE_TTL"},
		{"bad trusted proxy", func(c *config.Config) { c.TrustedProxies = []string{"proxy.local"} }, "TRUSTED_PROXIES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)

			_, err := New(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("New error = %v, want one naming %s", err, tt.want)
			}
		})
	}
}

func TestBuild_SignsWithConfiguredURLTTL(t *testing.T) {
	store := testutil.NewFakeObjectStore()
	urls := cache.NewLRUStore(cache.MustNewTimedLRU[string, string](storage.DefaultURLTTL, 10))
	a := Build(testConfig(), testutil.NewTestDB(t), store, urls)
	defer a.RateLimiter.Close()

	_, _, err := a.PhotoService.Create(context.Background(), []string{"a.jpg"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(store.PresignPutCalls) != 1 || store.PresignPutCalls[0].TTL != 2*time.Minute {
		t.Errorf("upload presign calls = %+v, want ttl 2m", store.PresignPutCalls)
	}
	if len(store.PresignGetCalls) != 1 || store.PresignGetCalls[0].TTL != 2*time.Minute {
		t.Errorf("read presign calls = %+v, want ttl 2m", store.PresignGetCalls)
	}
}
