package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintCartToken issues a signed session token. An empty sessionID starts a new session.
func MintCartToken(cfg config.CartConfig, now time.Time, sessionID string) (string, *CartSessionClaims, error) {
	if cfg.TokenSecret == "" {
		return "", nil, fmt.Errorf("cart token secret is required")
	}
	if cfg.TokenIssuer == "" {
		return "", nil, fmt.Errorf("cart token issuer is required")
	}
	if cfg.TokenTTL <= 0 {
		return "", nil, fmt.Errorf("cart token ttl must be positive")
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	claims := &CartSessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.TokenIssuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.TokenSecret))
	if err != nil {
		return "", nil, fmt.Errorf("signing cart token: %w", err)
	}
	return signed, claims, nil
}

// ParseCartToken validates the token string and returns typed claims.
func ParseCartToken(cfg config.CartConfig, tokenString string) (*CartSessionClaims, error) {
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("cart token secret is required")
	}

	claims := &CartSessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.TokenSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.TokenIssuer),
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("cart token missing subject")
	}

	return claims, nil
}
