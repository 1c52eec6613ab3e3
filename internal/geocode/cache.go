// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/width"
)

// Store persists geocoding results for the CachedGeocoder.
type Store interface {
	Get(ctx context.Context, key string) (Coordinate, bool, error)
	Set(ctx context.Context, key string, coords Coordinate, ttl time.Duration) error
}

// Pruner is implemented by stores that need expired entries removed explicitly.
type Pruner interface {
	Prune(now time.Time) int
}

// CachedGeocoder answers repeated queries from a Store. Successful lookups are kept for
// ttlHit, unknown places for ttlMiss. Transport and API errors are never cached.
type CachedGeocoder struct {
	coder   Geocoder
	store   Store
	ttlHit  time.Duration
	ttlMiss time.Duration
}

func NewCachedGeocoder(coder Geocoder, store Store, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	if store == nil {
		store = NewMemoryStore()
	}
	return &CachedGeocoder{
		coder:   coder,
		store:   store,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Search(ctx context.Context, query string) (Coordinate, error) {
	if strings.TrimSpace(query) == "" {
		return Coordinate{}, ErrEmptyQuery
	}
	key := newKey(c.coder.Name(), query)

	// A failing store degrades to an uncached lookup
	coords, ok, err := c.store.Get(ctx, key)
	if err == nil && ok {
		if !coords.Found {
			return Coordinate{}, ErrNoResults
		}
		coords.CacheHit = true
		return coords, nil
	}

	coords, err = c.coder.Search(ctx, query)
	switch {
	case errors.Is(err, ErrNoResults):
		_ = c.store.Set(ctx, key, Coordinate{}, c.ttlMiss)
		return coords, err
	case err != nil:
		return coords, err
	}

	coords.Found = true
	_ = c.store.Set(ctx, key, coords, c.ttlHit)
	return coords, nil
}

// Prune removes expired entries if the underlying store requires it.
func (c *CachedGeocoder) Prune() int {
	if p, ok := c.store.(Pruner); ok {
		return p.Prune(time.Now())
	}
	return 0
}

// newKey normalizes the query so that spelling variants in case and character width share an
// entry.
func newKey(provider, query string) string {
	return provider + ":" + strings.ToLower(width.Fold.String(strings.TrimSpace(query)))
}

type cacheEntry struct {
	Coords Coordinate
	Expiry time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: make(map[string]cacheEntry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (Coordinate, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.cache[key]
	if !ok || !time.Now().Before(entry.Expiry) {
		return Coordinate{}, false, nil
	}
	return entry.Coords, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, coords Coordinate, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = cacheEntry{Coords: coords, Expiry: time.Now().Add(ttl)}
	return nil
}

// Prune deletes all entries expired at now and returns how many were removed.
func (m *MemoryStore) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, entry := range m.cache {
		if !now.Before(entry.Expiry) {
			delete(m.cache, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}
