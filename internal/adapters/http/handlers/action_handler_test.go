package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/printcraft/customizer-engine/internal/adapters/http/middleware"
	"github.com/printcraft/customizer-engine/internal/domain/action"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// stubActionService records the Execute call it receives.
type stubActionService struct {
	ports.ActionService

	executed bool
	override map[string]any
}

func (s *stubActionService) Execute(_ context.Context, _, _ string, override map[string]any) (*ports.ExecuteResult, error) {
	s.executed = true
	s.override = override
	return &ports.ExecuteResult{ActionType: "UPDATE_CONFIG", Result: "ok"}, nil
}

func (s *stubActionService) ListActions(context.Context, string) ([]*action.Record, error) {
	return []*action.Record{}, nil
}

func newActionRouter(service ports.ActionService) http.Handler {
	r := chi.NewRouter()
	h := NewActionHandler(service)
	r.Get("/actions", h.List)
	r.Post("/actions/{id}/execute", h.Execute)
	return r
}

func tenantRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithShop(req.Context(), "demo.myshopify.com"))
}

func TestExecute_EmptyBodyIsAllowed(t *testing.T) {
	t.Parallel()

	service := &stubActionService{}
	rec := httptest.NewRecorder()
	newActionRouter(service).ServeHTTP(rec, tenantRequest(http.MethodPost, "/actions/act-1/execute", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if !service.executed {
		t.Error("service was not called")
	}
	if service.override != nil {
		t.Errorf("override = %v, want nil", service.override)
	}
}

func TestExecute_OverridePassedThrough(t *testing.T) {
	t.Parallel()

	service := &stubActionService{}
	rec := httptest.NewRecorder()
	body := `{"override": {"changes": {"buttonText": "Corrected"}}}`
	newActionRouter(service).ServeHTTP(rec, tenantRequest(http.MethodPost, "/actions/act-1/execute", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, ok := service.override["changes"]; !ok {
		t.Errorf("override = %v, want changes key", service.override)
	}
}

func TestExecute_MalformedJSONRejected(t *testing.T) {
	t.Parallel()

	service := &stubActionService{}
	rec := httptest.NewRecorder()
	newActionRouter(service).ServeHTTP(rec, tenantRequest(http.MethodPost, "/actions/act-1/execute", "{not json"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if service.executed {
		t.Error("service must not run on a malformed body")
	}
}

func TestExecute_MissingTenantIsInternalError(t *testing.T) {
	t.Parallel()

	service := &stubActionService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/actions/act-1/execute", nil)
	newActionRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if service.executed {
		t.Error("service must not run without a tenant")
	}
}

func TestList_EmptyHistory(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newActionRouter(&stubActionService{}).ServeHTTP(rec, tenantRequest(http.MethodGet, "/actions", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}
