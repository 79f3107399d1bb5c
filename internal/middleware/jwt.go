package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/course-stream/internal/utils"
)

const bearerPrefix = "Bearer "

// RequireRole returns an Echo middleware that admits a request only when it
// carries a valid login token for the given role.  Verification is fully
// offline: the token is checked against secret and nothing is looked up.
//
//   - no or malformed Authorization header → 401 "no token provided"
//   - bad signature, malformed claims or expired token → 401 "token failed"
//   - valid token whose role differs from role → 403 "forbidden"
//
// On success the verified identity is stored in the context (see
// IdentityFrom) and the next handler runs.
func RequireRole(secret, role string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token provided"})
            }
            who, err := utils.VerifyAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token failed"})
            }
            if who.Role != role {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            setIdentity(c, who)
            return next(c)
        }
    }
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, bool) {
    if !strings.HasPrefix(header, bearerPrefix) {
        return "", false
    }
    raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
    if raw == "" || strings.ContainsAny(raw, " \t") {
        return "", false
    }
    return raw, true
}
