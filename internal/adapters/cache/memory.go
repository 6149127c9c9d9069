// Package cache provides the derived-data cache adapters behind the
// invalidation port. Mutations only ever delete keys; the serving layer that
// populates them decides lifetimes.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/printcraft/customizer-engine/internal/ports"
)

// Compile-time check that Memory implements ports.CacheInvalidator.
var _ ports.CacheInvalidator = (*Memory)(nil)

// Memory is an in-process cache for single-instance deployments.
type Memory struct {
	c *gocache.Cache
}

// NewMemory creates an in-process cache. Entries expire after defaultTTL;
// zero means no expiry.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{c: gocache.New(defaultTTL, 2*defaultTTL+time.Minute)}
}

// Invalidate drops the given keys.
func (m *Memory) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		m.c.Delete(key)
	}
}

// Set stores a value under key with the default TTL.
func (m *Memory) Set(key string, value any) {
	m.c.SetDefault(key, value)
}

// Get returns the cached value and whether it was present.
func (m *Memory) Get(key string) (any, bool) {
	return m.c.Get(key)
}
