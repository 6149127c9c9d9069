package ports

import (
	"context"

	"github.com/printcraft/customizer-engine/internal/domain/action"
)

// ActionService defines the service port for executing, rolling back, and
// inspecting actions. Implemented by the application layer; called by inbound
// adapters (handlers).
type ActionService interface {
	// Execute applies the action identified by (shop, actionID). Execution
	// is permitted exactly once per record: a record that is not Pending
	// yields domain.ErrAlreadyExecuted (or domain.ErrInvalidState once
	// rolled back). Override fields, when non-nil, are merged over the
	// stored payload before dispatch (operator corrections).
	//
	// Executor failures are returned as *domain.ExecutionError and leave
	// the record Pending, so the call is safe to retry.
	Execute(ctx context.Context, shop, actionID string, override map[string]any) (*ExecuteResult, error)

	// Rollback inverts a previously executed action using its stored
	// snapshot and transitions the record to RolledBack (terminal).
	// Returns domain.ErrRollbackUnavailable when no snapshot exists.
	Rollback(ctx context.Context, shop, actionID string) (*ExecuteResult, error)

	// ApplyBulk applies the same configuration changes to each target in
	// order. Per-target outcomes are independent; partial application is a
	// valid result, not an engine failure. The returned lists always
	// satisfy len(Succeeded)+len(Failed) == len(targetIDs).
	ApplyBulk(ctx context.Context, shop string, targetIDs []string, changes map[string]any) (*BulkResult, error)

	// GetAction returns the record for inspection.
	GetAction(ctx context.Context, shop, actionID string) (*action.Record, error)

	// ListActions returns the shop's action history, most recent first.
	ListActions(ctx context.Context, shop string) ([]*action.Record, error)
}

// ExecuteResult is the outcome of a successful execute or rollback call.
type ExecuteResult struct {
	ActionType string
	Result     any
}

// BulkFailure records a single failed target within a bulk operation.
type BulkFailure struct {
	TargetID string
	Message  string
}

// BulkResult holds the outcomes of a bulk configuration update. Succeeded
// holds target ids in input order; Failed holds per-target failures, also in
// input order.
type BulkResult struct {
	Succeeded []string
	Failed    []BulkFailure
}
