package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionExpiresAt reads the expiry claim from an access token without
// verifying its signature. The identity provider mints and verifies these
// tokens; this service only refuses to schedule work with a token that is
// already expired, since every record-store call would fail with it.
// Returns the zero time when the token carries no expiry claim.
func SessionExpiresAt(accessToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read expiry claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// SessionExpired reports whether the access token is past its expiry.
// Unparseable tokens are not treated as expired here; the record store is
// the authority and will reject them on first use.
func SessionExpired(accessToken string, now time.Time) bool {
	exp, err := SessionExpiresAt(accessToken)
	if err != nil || exp.IsZero() {
		return false
	}
	return exp.Before(now)
}
