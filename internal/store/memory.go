package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
)

// ErrValueTooLarge is returned when a value exceeds the memory quota.
var ErrValueTooLarge = errors.New("value exceeds storage quota")

// MemoryKV keeps values in a bounded in-process cache. A single entry may
// use at most 1/1024 of the cache size.
type MemoryKV struct {
	cache *freecache.Cache
}

// NewMemory returns a cache of roughly sizeBytes (freecache enforces a 512KB floor).
func NewMemory(sizeBytes int) *MemoryKV {
	return &MemoryKV{cache: freecache.NewCache(sizeBytes)}
}

// Get returns the value stored under key.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, err := m.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set replaces the value stored under key.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	if err := m.cache.Set([]byte(key), value, 0); err != nil {
		if errors.Is(err, freecache.ErrLargeEntry) || errors.Is(err, freecache.ErrLargeKey) {
			return fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(value))
		}
		return err
	}
	return nil
}

// Close releases nothing; the cache lives until the process exits.
func (m *MemoryKV) Close() error {
	return nil
}
