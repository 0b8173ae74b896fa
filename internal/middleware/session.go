package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-storefront/internal/logging"
	"github.com/iliyamo/cinema-storefront/internal/utils"
)

// SessionConfig controls the visitor session cookie.
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// sessionKey is where the session id is stored in the echo context.
const sessionKey = "session_id"

// SessionCookie returns an Echo middleware that resolves the visitor's
// session id from a signed cookie.  A missing, expired or tampered cookie
// is replaced by a fresh session; the visitor is never rejected.  Every
// response re-issues the cookie so that the expiry slides with activity.
func SessionCookie(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cfg.CookieName); err == nil {
				if sid, err := utils.ParseSessionToken(cfg.Secret, ck.Value); err == nil {
					id = sid
				}
			}
			if id == "" {
				id = utils.NewSessionID()
			}

			tok, err := utils.NewSessionToken(cfg.Secret, id, cfg.TTL)
			if err != nil {
				logging.FromContext(c.Request().Context()).WithError(err).Error("issue session cookie")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start a session"})
			}
			c.SetCookie(&http.Cookie{
				Name:     cfg.CookieName,
				Value:    tok.Token,
				Path:     "/",
				Expires:  tok.Exp,
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			c.Set(sessionKey, id)
			ctx := logging.ToContext(c.Request().Context(),
				logging.FromContext(c.Request().Context()).WithField("session_id", id))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
