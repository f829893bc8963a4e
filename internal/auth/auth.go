// Package auth guards the presentation API with a static key.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"shiftly/internal/models"

	"github.com/labstack/echo/v4"
)

// HeaderAPIKey carries the console key, mirroring the backend's header
const HeaderAPIKey = "X-API-Key"

// keyFromRequest reads the key from X-API-Key, falling back to a bearer token
func keyFromRequest(c echo.Context) string {
	if key := c.Request().Header.Get(HeaderAPIKey); key != "" {
		return key
	}
	token := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		return token[7:]
	}
	return ""
}

// Middleware rejects requests without the configured key. An empty key
// disables the check.
func Middleware(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if key == "" {
			return next
		}
		return func(c echo.Context) error {
			got := keyFromRequest(c)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error: "Unauthorized. Missing or invalid API key.",
				})
			}
			return next(c)
		}
	}
}
