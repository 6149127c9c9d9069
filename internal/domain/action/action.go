// Package action models the persisted unit of work the engine executes and
// rolls back. Records are created upstream in Pending state; this engine only
// advances them through the lifecycle, never deletes them.
package action

import (
	"time"
)

// Status is the lifecycle state of an action record.
type Status string

const (
	// StatusPending means the action has been proposed but not executed.
	// Pending is the only state from which execution is permitted.
	StatusPending Status = "pending"
	// StatusExecuted means the action has been applied and a rollback
	// snapshot is stored.
	StatusExecuted Status = "executed"
	// StatusRolledBack is terminal: the action's effect has been inverted
	// and no further transition is permitted.
	StatusRolledBack Status = "rolled_back"
)

// IsValid reports whether s is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusExecuted, StatusRolledBack:
		return true
	}
	return false
}

// Descriptor is the ephemeral action proposal supplied by the external
// assistant: a type tag plus an opaque payload the matching executor
// interprets. The engine never persists descriptors on its own.
type Descriptor struct {
	Type    string
	Payload map[string]any
}

// Record is a persisted action with its lifecycle state, original payload,
// and (after execution) the snapshot needed to invert the mutation.
//
// Snapshot is opaque to everything except the executor that produced it;
// its shape varies per action family (field maps for config, full-record
// copies for assets, whole-sequence copies for designs).
type Record struct {
	ID         string
	Shop       string
	ActionType string
	Payload    map[string]any
	Status     Status
	Snapshot   map[string]any
	ExecutedAt *time.Time
	ApprovedAt *time.Time
	CreatedAt  time.Time
}

// CanExecute reports whether the record is in a state that permits execution.
func (r *Record) CanExecute() bool {
	return r.Status == StatusPending
}

// CanRollback reports whether the record is in a state that permits rollback.
// A snapshot must exist; records that executed without one (none today) and
// records already rolled back cannot be inverted.
func (r *Record) CanRollback() bool {
	return r.Status == StatusExecuted && len(r.Snapshot) > 0
}
