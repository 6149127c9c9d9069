package executor

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Bulk applies one set of configuration changes across many targets.
// Targets are processed sequentially in input order and independently: a
// failed target is recorded and the walk continues, so partial application is
// a normal result. Every target lands in exactly one of the two result lists.
type Bulk struct {
	config *Config
	logger *slog.Logger
}

// NewBulk creates the bulk executor on top of the config executor.
func NewBulk(config *Config, logger *slog.Logger) *Bulk {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bulk{config: config, logger: logger}
}

// Bindings returns the action types served by this executor.
//
// BULK_UPDATE_CONFIG payload: {"productIds": [string], "changes": map}.
// The snapshot stores each succeeded target's previous field values; rollback
// reapplies them per target and tolerates per-target failures the same way
// execution does.
func (e *Bulk) Bindings() map[string]Binding {
	return map[string]Binding{
		TypeBulkUpdateConfig: {
			Execute: func(ctx context.Context, shop string, payload map[string]any) (*Outcome, error) {
				targetIDs := stringSliceField(payload, "productIds")
				if len(targetIDs) == 0 {
					return nil, &domain.ValidationError{Fields: map[string]string{"productIds": "required"}}
				}
				changes, err := requireMap(payload, "changes")
				if err != nil {
					return nil, err
				}
				return e.Apply(ctx, shop, targetIDs, changes)
			},
			Rollback: e.rollback,
		},
	}
}

// Apply runs the config update against each target in order.
func (e *Bulk) Apply(ctx context.Context, shop string, targetIDs []string, changes map[string]any) (*Outcome, error) {
	result := &ports.BulkResult{
		Succeeded: []string{},
		Failed:    []ports.BulkFailure{},
	}
	previous := map[string]any{}

	for _, target := range targetIDs {
		outcome, err := e.config.Apply(ctx, shop, target, changes)
		if err != nil {
			e.logger.WarnContext(ctx, "bulk target failed",
				slog.String("operation", "Bulk.Apply"),
				slog.String("shop", shop),
				slog.String("target_id", target),
				slog.String("error", err.Error()),
			)
			result.Failed = append(result.Failed, ports.BulkFailure{TargetID: target, Message: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, target)
		previous[target] = outcome.Snapshot
	}

	e.logger.InfoContext(ctx, "bulk update finished",
		slog.String("operation", "Bulk.Apply"),
		slog.String("shop", shop),
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)),
	)

	return &Outcome{
		Result:   result,
		Snapshot: map[string]any{"targets": previous},
	}, nil
}

func (e *Bulk) rollback(ctx context.Context, shop string, payload, snapshot map[string]any) (*Outcome, error) {
	targets := mapField(snapshot, "targets")

	result := &ports.BulkResult{
		Succeeded: []string{},
		Failed:    []ports.BulkFailure{},
	}
	// The snapshot is a map, so walk its keys sorted to keep rollback order
	// and the result lists deterministic, matching the execute path.
	for _, target := range slices.Sorted(maps.Keys(targets)) {
		changes, ok := targets[target].(map[string]any)
		if !ok || len(changes) == 0 {
			continue
		}
		if _, err := e.config.Apply(ctx, shop, target, changes); err != nil {
			result.Failed = append(result.Failed, ports.BulkFailure{TargetID: target, Message: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, target)
	}

	return &Outcome{Result: result}, nil
}
