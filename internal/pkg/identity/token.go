package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryLeeway refreshes slightly early so a token does not expire mid-flight.
const expiryLeeway = 30 * time.Second

// TokenExpired inspects the access token's exp claim to decide whether a
// refresh should be attempted before calling the provider. Claims are parsed
// unverified and never used for authorization: the provider stays
// authoritative. Unparseable tokens count as not expired and are left for
// the provider to reject.
func TokenExpired(tokenString string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now.Add(expiryLeeway))
}
