// Package localstore provides the durable client-local key-value area that
// backs the session and vote markers.
package localstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"boardclient/internal/config"
	"boardclient/internal/database"
)

// KV is a string key-value store that survives restarts of the client.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// KeysWithPrefix lists every key starting with prefix, sorted.
	KeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Open builds the KV selected by cfg.LocalStorageDriver.
func Open(cfg *config.Config) (KV, error) {
	switch cfg.LocalStorageDriver {
	case config.LocalStorageMemory:
		return NewMemoryKV(), nil
	case config.LocalStorageSQLite:
		db, err := database.OpenSQLite(cfg.LocalStoragePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteKV(db)
	case config.LocalStorageRedis:
		return NewRedisKV(NewRedisClient(cfg.RedisURL)), nil
	default:
		return nil, fmt.Errorf("unknown local storage driver %q", cfg.LocalStorageDriver)
	}
}

// MemoryKV is a process-local KV. It does not survive restarts and is meant
// for tests and throwaway sessions.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) KeysWithPrefix(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
