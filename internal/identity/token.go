package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenParser decodes claims without verifying the signature. The client
// reads exp purely for UX; the server remains the authority on validity.
var tokenParser = jwt.NewParser()

// TokenExpiry extracts the exp claim from an access token payload.
// It returns false for a malformed token or a missing exp claim.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := tokenParser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenValid reports whether the token carries an exp claim in the future.
// Undecodable tokens are invalid, never an error.
func TokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	exp, ok := TokenExpiry(token)
	return ok && exp.After(now)
}
