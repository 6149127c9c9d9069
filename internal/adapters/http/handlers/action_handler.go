// Package handlers contains the inbound HTTP handlers that translate between
// the JSON API surface and the application service ports.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printcraft/customizer-engine/internal/adapters/http/dto"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// ActionHandler serves the action lifecycle endpoints: execute, rollback,
// and history inspection.
type ActionHandler struct {
	service ports.ActionService
}

// NewActionHandler creates an ActionHandler backed by the given service.
func NewActionHandler(service ports.ActionService) *ActionHandler {
	return &ActionHandler{service: service}
}

// Execute handles POST /api/v1/actions/{id}/execute. The body is optional;
// when present it may carry payload override fields.
func (h *ActionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	shop, ok := shopFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.ExecuteActionRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	res, err := h.service.Execute(r.Context(), shop, chi.URLParam(r, "id"), req.Override)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewExecuteResponse(res))
}

// Rollback handles POST /api/v1/actions/{id}/rollback.
func (h *ActionHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	shop, ok := shopFromRequest(w, r)
	if !ok {
		return
	}

	res, err := h.service.Rollback(r.Context(), shop, chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewExecuteResponse(res))
}

// Get handles GET /api/v1/actions/{id}.
func (h *ActionHandler) Get(w http.ResponseWriter, r *http.Request) {
	shop, ok := shopFromRequest(w, r)
	if !ok {
		return
	}

	record, err := h.service.GetAction(r.Context(), shop, chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewActionResponse(record))
}

// List handles GET /api/v1/actions, returning the shop's history most recent
// first.
func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	shop, ok := shopFromRequest(w, r)
	if !ok {
		return
	}

	records, err := h.service.ListActions(r.Context(), shop)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewActionListResponse(records))
}
