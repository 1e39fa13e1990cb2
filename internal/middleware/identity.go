package middleware

// identity.go defines helper functions shared across middleware files. Currently
// it provides a user identifier extraction function used for rate-limit key
// building. It checks the context values set by JWTAuth first and falls back
// to the raw JWT claims when another middleware stored the parsed token.
// When no user is authenticated, "anon" is returned.

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// currentUserID extracts a user identifier from the Echo context. It
// returns "anon" when no user is authenticated or the claims are missing.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return fmt.Sprintf("%.0f", t)
		case uint64:
			return fmt.Sprintf("%d", t)
		}
	}
	if u := c.Get("user"); u != nil {
		if tok, ok := u.(*jwt.Token); ok {
			if cl, ok := tok.Claims.(jwt.MapClaims); ok {
				if v, ok := cl["sub"].(string); ok && v != "" {
					return v
				}
			}
		}
	}
	return "anon"
}
