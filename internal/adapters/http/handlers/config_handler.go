package handlers

import (
	"net/http"

	"github.com/printcraft/customizer-engine/internal/adapters/http/dto"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// ConfigHandler serves the direct configuration endpoints that bypass stored
// action records.
type ConfigHandler struct {
	service ports.ActionService
}

// NewConfigHandler creates a ConfigHandler backed by the given service.
func NewConfigHandler(service ports.ActionService) *ConfigHandler {
	return &ConfigHandler{service: service}
}

// BulkUpdate handles POST /api/v1/configs/bulk, applying the same changes to
// every listed product. Partial failure returns 200 with per-target outcomes;
// only a request-level problem is an error status.
func (h *ConfigHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	shop, ok := shopFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.BulkUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.ApplyBulk(r.Context(), shop, req.ProductIDs, req.Changes)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewBulkUpdateResponse(res))
}
