package portalauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry resolves the lifetime of a freshly granted token. The backend's
// explicit ExpiresIn wins; otherwise the token's own JWT exp claim is used
// when present; otherwise the configured default applies. The exp claim is
// read without signature verification — this is lifetime bookkeeping, not
// validation, which only the backend can do.
func tokenExpiry(grant *CredentialGrant, fallback time.Duration, now func() time.Time) time.Duration {
	if grant.ExpiresIn > 0 {
		return grant.ExpiresIn
	}
	if exp, ok := jwtExpiry(grant.Token); ok {
		remaining := exp.Sub(now())
		if remaining > 0 {
			return remaining
		}
	}
	return fallback
}

func jwtExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
