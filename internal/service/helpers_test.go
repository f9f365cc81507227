package service

import (
	"fmt"
	"testing"

	"github.com/oursapp/ours/internal/cache"
	"github.com/oursapp/ours/internal/storage"
	"github.com/oursapp/ours/internal/testutil"
)

// newTestImages returns a lifecycle over a fake store whose key suffixes are
// "1", "2", ... in allocation order.
func newTestImages(t *testing.T) (*ImageLifecycle, *testutil.FakeObjectStore) {
	t.Helper()
	store := testutil.NewFakeObjectStore()
	lru := cache.MustNewTimedLRU[string, string](storage.DefaultURLTTL, 100)
	images := NewImageLifecycle(storage.NewSignedURLProvider(store, cache.NewLRUStore(lru), 0))

	n := 0
	images.newID = func() string {
		n++
		return fmt.Sprint(n)
	}
	return images, store
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
