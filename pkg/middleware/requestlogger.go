package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/No25ha/Market/pkg/logger"
)

// ShopperFunc reports the ID of the shopper currently signed in to the
// daemon, or "" when nobody is.
type ShopperFunc func(ctx context.Context) string

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// shopper_id, trace_id and span_id and stores it in the request context, where
// handlers retrieve it with logger.FromContext.
//
// Mount it after RequestLogging and Tracing so both IDs are already set.
// shopper may be nil.
func RequestLogger(base *slog.Logger, shopper ShopperFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if shopper != nil {
				if id := shopper(ctx); id != "" {
					ctx = logger.WithShopperID(ctx, id)
				}
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
