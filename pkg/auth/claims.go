package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// CartSessionClaims identifies an anonymous browsing session. The subject is the
// session id that keys the session's cart.
type CartSessionClaims struct {
	jwt.RegisteredClaims
}

// SessionID returns the subject carried by the token.
func (c CartSessionClaims) SessionID() string {
	return c.Subject
}
