package executor_test

import (
	"context"
	"sync"
	"time"

	"github.com/printcraft/customizer-engine/internal/platform/clock"
)

// spyCache records the keys each mutation invalidates.
type spyCache struct {
	mu   sync.Mutex
	keys []string
}

func (c *spyCache) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keys...)
}

func (c *spyCache) invalidated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.keys...)
}

var testClock = clock.Fixed{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

const testShop = "demo.myshopify.com"
