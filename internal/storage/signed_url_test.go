package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oursapp/ours/internal/cache"
	"github.com/oursapp/ours/internal/testutil"
)

func newTestProvider(t *testing.T) (*SignedURLProvider, *testutil.FakeObjectStore) {
	t.Helper()
	store := testutil.NewFakeObjectStore()
	lru := cache.MustNewTimedLRU[string, string](DefaultURLTTL, 100)
	return NewSignedURLProvider(store, cache.NewLRUStore(lru), 0), store
}

func TestSignedURL_HitMakesNoSignerCall(t *testing.T) {
	p, store := newTestProvider(t)
	ctx := context.Background()

	first, err := p.SignedURL(ctx, "carousel/a.jpg-1")
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	second, err := p.SignedURL(ctx, "carousel/a.jpg-1")
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}

	if first != second {
		t.Errorf("cached url changed: %q vs %q", first, second)
	}
	if n := len(store.PresignGetCalls); n != 1 {
		t.Fatalf("PresignGet calls = %d, want 1", n)
	}
	if ttl := store.PresignGetCalls[0].TTL; ttl != DefaultURLTTL {
		t.Errorf("ttl = %v, want %v", ttl, DefaultURLTTL)
	}
}

func TestSignedURL_ExplicitTTL(t *testing.T) {
	p, store := newTestProvider(t)

	_, err := p.SignedURL(context.Background(), "avatar/me.png-1", 2*time.Minute)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if ttl := store.PresignGetCalls[0].TTL; ttl != 2*time.Minute {
		t.Errorf("ttl = %v, want 2m", ttl)
	}
}

func TestSignedURL_TTLBelowMinimumPanics(t *testing.T) {
	p, store := newTestProvider(t)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for ttl below minimum")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "at least") {
			t.Errorf("panic message %q should name the minimum", msg)
		}
		if store.Calls() != 0 {
			t.Error("no storage call expected before the precondition check")
		}
	}()

	_, _ = p.SignedURL(context.Background(), "carousel/a", 59*time.Second)
}

func TestNewSignedURLProvider_DefaultTTLBelowMinimumPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	lru := cache.MustNewTimedLRU[string, string](time.Minute, 10)
	NewSignedURLProvider(testutil.NewFakeObjectStore(), cache.NewLRUStore(lru), 30*time.Second)
}

func TestSignedURL_ErrorIsNotCached(t *testing.T) {
	p, store := newTestProvider(t)
	store.PresignGetErr = errors.New("r2 down")

	_, err := p.SignedURL(context.Background(), "carousel/a")
	if err == nil {
		t.Fatal("expected error")
	}

	store.PresignGetErr = nil
	url, err := p.SignedURL(context.Background(), "carousel/a")
	if err != nil || url == "" {
		t.Fatalf("SignedURL after recovery = %q, %v", url, err)
	}
	if n := len(store.PresignGetCalls); n != 2 {
		t.Errorf("PresignGet calls = %d, want 2", n)
	}
}

func TestUploadURL_NeverCached(t *testing.T) {
	p, store := newTestProvider(t)
	ctx := context.Background()

	for range 3 {
		if _, err := p.UploadURL(ctx, "two-do/x.jpg-1"); err != nil {
			t.Fatalf("UploadURL: %v", err)
		}
	}
	if n := len(store.PresignPutCalls); n != 3 {
		t.Errorf("PresignPut calls = %d, want 3", n)
	}
}

func TestDelete_EvictsCachedURL(t *testing.T) {
	p, store := newTestProvider(t)
	ctx := context.Background()

	_, _ = p.SignedURL(ctx, "avatar/a")
	if err := p.Delete(ctx, "avatar/a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, _ = p.SignedURL(ctx, "avatar/a")

	if n := len(store.PresignGetCalls); n != 2 {
		t.Errorf("PresignGet calls = %d, want 2 (cache entry should be evicted)", n)
	}
	if got := store.Deleted(); len(got) != 1 || got[0] != "avatar/a" {
		t.Errorf("deleted = %v", got)
	}
}

func TestCategory_ObjectKey(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{Avatar, "avatar/k"},
		{Carousel, "carousel/k"},
		{TodoAttachment, "two-do/k"},
	}
	for _, tt := range tests {
		if got := tt.cat.ObjectKey("k"); got != tt.want {
			t.Errorf("%s.ObjectKey = %q, want %q", tt.cat.Name, got, tt.want)
		}
	}
}
