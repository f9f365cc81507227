// Package testutil provides shared test helpers and fakes.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FakeObjectStore is an in-memory ObjectStore. URLs are deterministic so tests
// can assert on them. Errors are configurable per operation and every call is
// recorded.
type FakeObjectStore struct {
	Mu sync.Mutex

	// --- Configurable responses ---
	PresignGetErr error
	PresignPutErr error
	DeleteErr     error

	// OnDelete runs before a delete is recorded; use it to inspect state at
	// the moment storage is touched.
	OnDelete func(key string)

	// --- Call tracking ---
	PresignGetCalls []PresignCall
	PresignPutCalls []PresignCall
	DeleteCalls     []string
}

// PresignCall captures arguments to PresignGet and PresignPut.
type PresignCall struct {
	Key string
	TTL time.Duration
}

func NewFakeObjectStore() *FakeObjectStore {
	return &FakeObjectStore{}
}

func (f *FakeObjectStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.PresignGetCalls = append(f.PresignGetCalls, PresignCall{Key: key, TTL: ttl})
	if f.PresignGetErr != nil {
		return "", f.PresignGetErr
	}
	return fmt.Sprintf("https://r2.test/get/%s?n=%d", key, len(f.PresignGetCalls)), nil
}

func (f *FakeObjectStore) PresignPut(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.PresignPutCalls = append(f.PresignPutCalls, PresignCall{Key: key, TTL: ttl})
	if f.PresignPutErr != nil {
		return "", f.PresignPutErr
	}
	return "https://r2.test/put/" + key, nil
}

func (f *FakeObjectStore) Delete(_ context.Context, key string) error {
	f.Mu.Lock()
	onDelete := f.OnDelete
	f.Mu.Unlock()

	if onDelete != nil {
		onDelete(key)
	}

	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.DeleteCalls = append(f.DeleteCalls, key)
	return f.DeleteErr
}

// Calls returns the total number of storage calls made so far.
func (f *FakeObjectStore) Calls() int {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	return len(f.PresignGetCalls) + len(f.PresignPutCalls) + len(f.DeleteCalls)
}

// Deleted returns a copy of the deleted keys in call order.
func (f *FakeObjectStore) Deleted() []string {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	return append([]string(nil), f.DeleteCalls...)
}
