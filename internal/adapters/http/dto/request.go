package dto

import (
	"github.com/printcraft/customizer-engine/internal/domain"
)

// ExecuteActionRequest is the optional body of an execute call. Override
// fields, when present, are merged over the stored action payload before
// dispatch.
type ExecuteActionRequest struct {
	Override map[string]any `json:"override,omitempty"`
}

// Validate checks the request. An empty body is valid.
func (r *ExecuteActionRequest) Validate() error {
	return nil
}

// BulkUpdateRequest is the body of a direct bulk configuration update.
type BulkUpdateRequest struct {
	ProductIDs []string       `json:"productIds"`
	Changes    map[string]any `json:"changes"`
}

// Validate checks that targets and changes are present.
func (r *BulkUpdateRequest) Validate() error {
	fields := map[string]string{}
	if len(r.ProductIDs) == 0 {
		fields["productIds"] = "must not be empty"
	}
	if len(r.Changes) == 0 {
		fields["changes"] = "must not be empty"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
