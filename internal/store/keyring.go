package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "tasklists"

// KeyringStore keeps each record as an item in the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore opens the system keyring. fileDir is used when the
// keyring falls back to its encrypted file backend; empty selects
// ~/.config/tasklists/keyring.
func NewKeyringStore(fileDir string) (*KeyringStore, error) {
	if fileDir == "" {
		fileDir = "~/.config/tasklists/keyring"
	} else if filepath.Ext(fileDir) != "" {
		// A file path (for example the sqlite default) was configured;
		// keep the keyring files next to it.
		fileDir = filepath.Join(filepath.Dir(fileDir), "keyring")
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("tasklists-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringStoreFrom(ring), nil
}

// NewKeyringStoreFrom wraps an already opened keyring.
func NewKeyringStoreFrom(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// Get returns the value stored under key.
func (s *KeyringStore) Get(_ context.Context, key string) (string, bool, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting record %q: %w", key, err)
	}
	return string(item.Data), true, nil
}

// Set stores value under key.
func (s *KeyringStore) Set(_ context.Context, key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting record %q: %w", key, err)
	}
	return nil
}

// Keys returns the stored keys starting with prefix.
func (s *KeyringStore) Keys(_ context.Context, prefix string) ([]string, error) {
	all, err := s.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("listing keyring items: %w", err)
	}
	var keys []string
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; the keyring holds no open handles.
func (s *KeyringStore) Close() error {
	return nil
}
