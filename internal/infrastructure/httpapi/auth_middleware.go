package httpapi

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AdminAuth guards the administrative routes with a static bearer token.
// Authorization failures are rejected before any detection or fix work
// begins; an unconfigured token denies everything.
func AdminAuth(token string, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				logger.Error("admin token is not configured; rejecting request", "path", c.Path())
				return fail(c, http.StatusServiceUnavailable, "admin operations are not configured")
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || presented == "" {
				return fail(c, http.StatusUnauthorized, "authentication required")
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				logger.Warn("admin token mismatch", "path", c.Path())
				return fail(c, http.StatusForbidden, "permission denied")
			}

			return next(c)
		}
	}
}
