package middleware

// identity.go defines helpers shared across middleware files and handlers.

import "github.com/labstack/echo/v4"

// SessionID returns the visitor session id stored by SessionCookie, or ""
// when the route does not run behind it.
func SessionID(c echo.Context) string {
	if v, ok := c.Get(sessionKey).(string); ok {
		return v
	}
	return ""
}

// visitorKey is the session id or "anon" for rate-limit keys.
func visitorKey(c echo.Context) string {
	if id := SessionID(c); id != "" {
		return id
	}
	return "anon"
}
