package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/printcraft/customizer-engine/internal/adapters/http/dto"
	"github.com/printcraft/customizer-engine/internal/domain"
)

const headerShopDomain = "X-Shop-Domain"

// shopKey is the context key for the authenticated shop domain.
type shopKey struct{}

// WithShop returns a new context carrying the shop domain.
func WithShop(ctx context.Context, shop string) context.Context {
	return context.WithValue(ctx, shopKey{}, shop)
}

// ShopFromContext extracts the shop domain from the context.
// Returns an empty string if no shop is stored.
func ShopFromContext(ctx context.Context) string {
	if shop, ok := ctx.Value(shopKey{}).(string); ok {
		return shop
	}
	return ""
}

// Shop returns middleware enforcing tenant scoping: every request must carry
// the X-Shop-Domain header, and the value is stored in the request context
// for handlers. Requests without it are rejected before reaching a handler,
// so no downstream code ever operates without a tenant.
func Shop() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shop := strings.TrimSpace(r.Header.Get(headerShopDomain))
			if shop == "" {
				dto.WriteErrorResponse(w, r, &domain.ValidationError{
					Fields: map[string]string{headerShopDomain: "header required"},
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithShop(r.Context(), shop)))
		})
	}
}
