// Package health collects the readiness checks of downstream dependencies
// behind a single registry that the readiness probe fans out over.
package health

import (
	"context"
	"sync"

	"github.com/printcraft/customizer-engine/internal/ports"
)

var _ ports.HealthRegistry = (*Registry)(nil)

// Registry holds the registered checkers. Registration happens during
// dependency wiring; probes read concurrently afterwards.
type Registry struct {
	mu     sync.RWMutex
	checks []ports.HealthChecker
}

func New() *Registry {
	return &Registry{}
}

// Register adds a checker. Safe to call concurrently with CheckAll.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	r.checks = append(r.checks, checker)
	r.mu.Unlock()
}

// CheckAll runs every registered check and maps checker name to its result,
// nil meaning healthy. The checker slice is snapshotted first so slow checks
// (a Redis ping against a wedged instance) never hold the lock.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	snapshot := append([]ports.HealthChecker(nil), r.checks...)
	r.mu.RUnlock()

	results := make(map[string]error, len(snapshot))
	for _, check := range snapshot {
		results[check.Name()] = check.HealthCheck(ctx)
	}
	return results
}
