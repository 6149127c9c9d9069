package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/printcraft/customizer-engine/internal/adapters/http/dto"
	"github.com/printcraft/customizer-engine/internal/adapters/http/middleware"
	"github.com/printcraft/customizer-engine/internal/domain"
)

// Request bodies larger than 1 MB are refused outright; even a bulk apply
// across a full catalog stays well under that.
const maxJSONBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

func invalidJSON(w http.ResponseWriter, r *http.Request) {
	dto.WriteErrorResponse(w, r, &domain.ValidationError{
		Fields: map[string]string{"body": "invalid JSON"},
	})
}

// decodeJSONBody decodes the size-limited request body into dst, answering
// with a 400 problem document and returning false on malformed input.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		invalidJSON(w, r)
		return false
	}
	return true
}

// validatable is implemented by request DTOs that check their own fields.
type validatable interface {
	Validate() error
}

// decodeAndValidate combines decoding with the DTO's own validation, writing
// the error response itself when either step fails.
func decodeAndValidate[T validatable](w http.ResponseWriter, r *http.Request, dst T) bool {
	if !decodeJSONBody(w, r, dst) {
		return false
	}
	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}

// decodeOptionalBody is decodeJSONBody for endpoints where the body may be
// absent entirely, such as execute without an override. Missing or empty
// bodies leave dst zero-valued.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return true
	default:
		invalidJSON(w, r)
		return false
	}
}

// shopFromRequest returns the tenant set by the shop middleware. The
// middleware rejects untenanted requests, so an empty value here is a wiring
// bug surfaced as an internal error.
func shopFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	shop := middleware.ShopFromContext(r.Context())
	if shop == "" {
		dto.WriteErrorResponse(w, r, errors.New("no shop in request context"))
		return "", false
	}
	return shop, true
}
