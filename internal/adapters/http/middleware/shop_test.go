package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestShop_MissingHeaderRejected(t *testing.T) {
	t.Parallel()

	called := false
	handler := Shop()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/actions", nil))

	if called {
		t.Error("handler ran without a tenant")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want problem+json", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != float64(http.StatusBadRequest) {
		t.Errorf("problem status = %v, want 400", body["status"])
	}
}

func TestShop_BlankHeaderRejected(t *testing.T) {
	t.Parallel()

	handler := Shop()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/actions", nil)
	req.Header.Set("X-Shop-Domain", "   ")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestShop_StoresTenantInContext(t *testing.T) {
	t.Parallel()

	var got string
	handler := Shop()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ShopFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/actions", nil)
	req.Header.Set("X-Shop-Domain", " demo.myshopify.com ")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got != "demo.myshopify.com" {
		t.Errorf("shop = %q, want trimmed header value", got)
	}
}

func TestShopFromContext_Missing(t *testing.T) {
	t.Parallel()

	if got := ShopFromContext(t.Context()); got != "" {
		t.Errorf("shop = %q, want empty", got)
	}
}
