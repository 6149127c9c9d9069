package dto

import (
	"time"

	"github.com/printcraft/customizer-engine/internal/domain/action"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// ExecuteResponse is the body returned by execute and rollback calls.
type ExecuteResponse struct {
	Success    bool   `json:"success"`
	ActionType string `json:"actionType"`
	Result     any    `json:"result,omitempty"`
}

// NewExecuteResponse builds an ExecuteResponse from a service result.
func NewExecuteResponse(res *ports.ExecuteResult) ExecuteResponse {
	return ExecuteResponse{
		Success:    true,
		ActionType: res.ActionType,
		Result:     res.Result,
	}
}

// ActionResponse is the inspection view of an action record.
type ActionResponse struct {
	ID         string         `json:"id"`
	ActionType string         `json:"actionType"`
	Payload    map[string]any `json:"payload,omitempty"`
	Status     string         `json:"status"`
	Snapshot   map[string]any `json:"snapshot,omitempty"`
	ExecutedAt *time.Time     `json:"executedAt,omitempty"`
	ApprovedAt *time.Time     `json:"approvedAt,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// NewActionResponse builds an ActionResponse from a record.
func NewActionResponse(r *action.Record) ActionResponse {
	return ActionResponse{
		ID:         r.ID,
		ActionType: r.ActionType,
		Payload:    r.Payload,
		Status:     string(r.Status),
		Snapshot:   r.Snapshot,
		ExecutedAt: r.ExecutedAt,
		ApprovedAt: r.ApprovedAt,
		CreatedAt:  r.CreatedAt,
	}
}

// NewActionListResponse builds the history view, preserving store order.
func NewActionListResponse(records []*action.Record) []ActionResponse {
	out := make([]ActionResponse, len(records))
	for i, r := range records {
		out[i] = NewActionResponse(r)
	}
	return out
}

// BulkFailureResponse is a single failed target within a bulk update.
type BulkFailureResponse struct {
	ProductID string `json:"productId"`
	Error     string `json:"error"`
}

// BulkUpdateResponse reports per-target outcomes of a bulk update. Every
// requested target appears in exactly one of the two lists.
type BulkUpdateResponse struct {
	Succeeded []string              `json:"success"`
	Failed    []BulkFailureResponse `json:"failed"`
}

// NewBulkUpdateResponse builds a BulkUpdateResponse from a service result.
func NewBulkUpdateResponse(res *ports.BulkResult) BulkUpdateResponse {
	failed := make([]BulkFailureResponse, len(res.Failed))
	for i, f := range res.Failed {
		failed[i] = BulkFailureResponse{ProductID: f.TargetID, Error: f.Message}
	}
	return BulkUpdateResponse{
		Succeeded: res.Succeeded,
		Failed:    failed,
	}
}
