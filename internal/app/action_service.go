// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port
// interfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/printcraft/customizer-engine/internal/app/executor"
	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/action"
	"github.com/printcraft/customizer-engine/internal/platform/clock"
	"github.com/printcraft/customizer-engine/internal/platform/telemetry"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// Compile-time check that ActionService implements ports.ActionService.
var _ ports.ActionService = (*ActionService)(nil)

// ActionService implements ports.ActionService. It owns the action life
// cycle: loading records, routing them to executors through the registry,
// and advancing record status with conditional store transitions so each
// record executes exactly once. The domain effects themselves live in the
// executors; this service contains no per-action logic.
type ActionService struct {
	actions  ports.ActionStore
	registry *executor.Registry
	bulk     *executor.Bulk
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// NewActionService creates an ActionService. The registry routes action types
// to their executors; the bulk executor serves the direct bulk entry point
// that bypasses stored records. Metrics may be nil in tests.
func NewActionService(actions ports.ActionStore, registry *executor.Registry, bulk *executor.Bulk, clk clock.Clock, logger *slog.Logger, metrics *telemetry.Metrics) *ActionService {
	return &ActionService{
		actions:  actions,
		registry: registry,
		bulk:     bulk,
		clock:    clk,
		logger:   logger,
		metrics:  metrics,
	}
}

// Execute applies a pending action. Override fields, when present, are merged
// over the stored payload before dispatch so operators can correct a proposal
// without mutating the record. The status transition is conditional: if a
// concurrent call already executed the record, this call returns
// domain.ErrAlreadyExecuted without re-applying effects.
func (s *ActionService) Execute(ctx context.Context, shop, actionID string, override map[string]any) (*ports.ExecuteResult, error) {
	record, err := s.actions.Get(ctx, shop, actionID)
	if err != nil {
		return nil, err
	}

	if !record.CanExecute() {
		if record.Status == action.StatusRolledBack {
			return nil, fmt.Errorf("%w: action %s is rolled back", domain.ErrInvalidState, actionID)
		}
		return nil, fmt.Errorf("%w: action %s", domain.ErrAlreadyExecuted, actionID)
	}

	binding, err := s.registry.Lookup(record.ActionType)
	if err != nil {
		return nil, err
	}

	payload := mergePayload(record.Payload, override)

	s.logger.InfoContext(ctx, "executing action",
		slog.String("operation", "Execute"),
		slog.String("shop", shop),
		slog.String("action_id", actionID),
		slog.String("action_type", record.ActionType),
		slog.Bool("overridden", len(override) > 0),
	)

	start := s.clock.Now()
	outcome, err := binding.Execute(ctx, shop, payload)
	s.record(ctx, record.ActionType, "execute", start, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "action execution failed",
			slog.String("operation", "Execute"),
			slog.String("shop", shop),
			slog.String("action_id", actionID),
			slog.String("action_type", record.ActionType),
			slog.Any("error", err),
		)
		return nil, &domain.ExecutionError{ActionType: record.ActionType, Err: err}
	}

	now := s.clock.Now()
	if err := s.actions.MarkExecuted(ctx, shop, actionID, outcome.Snapshot, now, now); err != nil {
		return nil, err
	}

	return &ports.ExecuteResult{ActionType: record.ActionType, Result: outcome.Result}, nil
}

// Rollback inverts an executed action using its stored snapshot and marks the
// record rolled back. Rolled-back records are terminal.
func (s *ActionService) Rollback(ctx context.Context, shop, actionID string) (*ports.ExecuteResult, error) {
	record, err := s.actions.Get(ctx, shop, actionID)
	if err != nil {
		return nil, err
	}

	if record.Status != action.StatusExecuted {
		return nil, fmt.Errorf("%w: action %s is %s, only executed actions roll back",
			domain.ErrInvalidState, actionID, record.Status)
	}
	if !record.CanRollback() {
		return nil, fmt.Errorf("%w: action %s has no snapshot", domain.ErrRollbackUnavailable, actionID)
	}

	binding, err := s.registry.Lookup(record.ActionType)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "rolling back action",
		slog.String("operation", "Rollback"),
		slog.String("shop", shop),
		slog.String("action_id", actionID),
		slog.String("action_type", record.ActionType),
	)

	start := s.clock.Now()
	outcome, err := binding.Rollback(ctx, shop, record.Payload, record.Snapshot)
	s.record(ctx, record.ActionType, "rollback", start, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "action rollback failed",
			slog.String("operation", "Rollback"),
			slog.String("shop", shop),
			slog.String("action_id", actionID),
			slog.String("action_type", record.ActionType),
			slog.Any("error", err),
		)
		return nil, &domain.ExecutionError{ActionType: record.ActionType, Err: err}
	}

	if err := s.actions.MarkRolledBack(ctx, shop, actionID); err != nil {
		return nil, err
	}

	return &ports.ExecuteResult{ActionType: record.ActionType, Result: outcome.Result}, nil
}

// ApplyBulk applies the same configuration changes across targets without a
// stored action record. Partial application is a valid result.
func (s *ActionService) ApplyBulk(ctx context.Context, shop string, targetIDs []string, changes map[string]any) (*ports.BulkResult, error) {
	if len(targetIDs) == 0 {
		return nil, &domain.ValidationError{Fields: map[string]string{"productIds": "required"}}
	}

	start := s.clock.Now()
	outcome, err := s.bulk.Apply(ctx, shop, targetIDs, changes)
	s.record(ctx, executor.TypeBulkUpdateConfig, "execute", start, err)
	if err != nil {
		return nil, err
	}

	result, ok := outcome.Result.(*ports.BulkResult)
	if !ok {
		return nil, errors.New("bulk executor returned unexpected result type")
	}
	return result, nil
}

// GetAction returns the record for inspection.
func (s *ActionService) GetAction(ctx context.Context, shop, actionID string) (*action.Record, error) {
	return s.actions.Get(ctx, shop, actionID)
}

// ListActions returns the shop's action history, most recent first.
func (s *ActionService) ListActions(ctx context.Context, shop string) ([]*action.Record, error) {
	return s.actions.List(ctx, shop)
}

func (s *ActionService) record(ctx context.Context, actionType, phase string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	attrs := metric.WithAttributes(
		telemetry.AttrActionType.String(actionType),
		telemetry.AttrActionPhase.String(phase),
		telemetry.AttrResult.String(result),
	)
	s.metrics.ActionDuration.Record(ctx, s.clock.Now().Sub(start).Seconds(), attrs)
	s.metrics.ActionTotal.Add(ctx, 1, attrs)
}

// mergePayload overlays override fields on the stored payload without
// mutating either input.
func mergePayload(payload, override map[string]any) map[string]any {
	if len(override) == 0 {
		return payload
	}
	merged := make(map[string]any, len(payload)+len(override))
	for k, v := range payload {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
