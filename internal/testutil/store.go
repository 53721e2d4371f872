// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/nhle/tasklists/internal/store"
)

// ErrInjected is a generic failure for error-injection tests.
var ErrInjected = errors.New("injected failure")

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// FakeStore is an in-memory store.Store that records writes and can be
// told to fail.
type FakeStore struct {
	mu     sync.Mutex
	values map[string]string
	writes map[string]int

	// Error injection for testing
	GetErr  error
	SetErr  error
	KeysErr error
}

var _ store.Store = (*FakeStore)(nil)

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		values: make(map[string]string),
		writes: make(map[string]int),
	}
}

// Put seeds a raw value without counting it as a write.
func (f *FakeStore) Put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}

// Raw returns the stored value for key.
func (f *FakeStore) Raw(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

// Writes returns how many successful Set calls targeted key.
func (f *FakeStore) Writes(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[key]
}

// Get implements store.Store.
func (f *FakeStore) Get(_ context.Context, key string) (string, bool, error) {
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Set implements store.Store.
func (f *FakeStore) Set(_ context.Context, key, value string) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.writes[key]++
	return nil
}

// Keys implements store.Store.
func (f *FakeStore) Keys(_ context.Context, prefix string) ([]string, error) {
	if f.KeysErr != nil {
		return nil, f.KeysErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements store.Store.
func (f *FakeStore) Close() error { return nil }
