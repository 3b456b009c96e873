package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/No25ha/Market/pkg/httputil"
)

// BearerToken guards the local API with a shared secret: requests must send
// "Authorization: Bearer <token>". An empty token disables the check.
//
// The daemon holds the shopper's upstream session, so anything that can reach
// its port can act as the shopper.
func BearerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte(token)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, got, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") {
				writeAuthError(w, "missing or malformed authorization header")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				writeAuthError(w, "invalid API token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="storefront"`)
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:      "UNAUTHORIZED",
			Message:   message,
			RequestID: w.Header().Get(CorrelationHeader),
		},
	})
}
