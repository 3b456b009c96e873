package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/No25ha/Market/internal/domain"
)

// idStrategy pulls a user id out of an identity payload.
type idStrategy func(id *domain.Identity) string

// loginIDStrategies are tried in order; the first non-blank result wins.
var loginIDStrategies = []idStrategy{
	func(id *domain.Identity) string { return id.ID },
	func(id *domain.Identity) string { return id.AltID },
	func(id *domain.Identity) string {
		if id.Wrapped == nil {
			return ""
		}
		return id.Wrapped.ID
	},
	func(id *domain.Identity) string {
		if id.Wrapped == nil {
			return ""
		}
		return id.Wrapped.AltID
	},
}

// verifyIDStrategies apply to an already unwrapped verification payload.
var verifyIDStrategies = []idStrategy{
	func(id *domain.Identity) string { return id.ID },
	func(id *domain.Identity) string { return id.AltID },
}

func extractID(id *domain.Identity, strategies []idStrategy) string {
	if id == nil {
		return ""
	}
	for _, s := range strategies {
		if v := s(id); !isBlank(v) {
			return v
		}
	}
	return ""
}

// isBlank reports whether v is empty or a placeholder left behind by
// serializing a missing value.
func isBlank(v string) bool {
	return v == "" || v == "undefined" || v == "null"
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if !isBlank(v) {
			return v
		}
	}
	return ""
}

// tokenClaims reads the token's claims without verifying the signature.
// The upstream owns the signing key; the claims are only used for display
// and as a last-resort user id.
func tokenClaims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// tokenExpiry returns the token's exp claim, if it has one.
func tokenExpiry(token string) *time.Time {
	claims, ok := tokenClaims(token)
	if !ok {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

// tokenSubject returns the user id carried in the token's "id" claim.
func tokenSubject(token string) string {
	claims, ok := tokenClaims(token)
	if !ok {
		return ""
	}
	if id, ok := claims["id"].(string); ok {
		return id
	}
	return ""
}
