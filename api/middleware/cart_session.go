package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CartTokenHeader carries the signed cart session token for clients that do not keep cookies.
const CartTokenHeader = "X-Cart-Token"

// CartSession resolves the anonymous cart session from the X-Cart-Token header or
// the cart cookie. A missing or invalid token starts a new session; the new
// token is returned both as a cookie and as a response header.
func CartSession(cfg config.CartConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := strings.TrimSpace(r.Header.Get(CartTokenHeader))
			if raw == "" {
				if cookie, err := r.Cookie(cfg.CookieName); err == nil {
					raw = strings.TrimSpace(cookie.Value)
				}
			}

			var sessionID string
			if raw != "" {
				claims, err := auth.ParseCartToken(cfg, raw)
				if err == nil {
					sessionID = claims.SessionID()
				} else if logg != nil {
					logg.Warn(logg.WithField(ctx, "reason", err.Error()), "cart.session.invalid_token")
				}
			}

			if sessionID == "" {
				token, claims, err := auth.MintCartToken(cfg, time.Now(), "")
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start cart session"))
					return
				}
				sessionID = claims.SessionID()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Expires:  claims.ExpiresAt.Time,
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
				w.Header().Set(CartTokenHeader, token)
			}

			ctx = WithCartSession(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
