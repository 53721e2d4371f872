package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nhle/tasklists/internal/model"
)

// Store is a synchronous string key/value backend. Writes replace the
// whole value; the last writer wins.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Keys returns the stored keys that start with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend.
	Close() error
}

// Open creates the backend selected by cfg.
func Open(cfg model.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case model.BackendSQLite, "":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating storage directory %s: %w", dir, err)
			}
		}
		return NewSQLiteStore(cfg.Path)
	case model.BackendKeyring:
		return NewKeyringStore(cfg.Path)
	case model.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
