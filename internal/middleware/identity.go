package middleware

// identity.go stores and retrieves the verified identity placed in the Echo
// context by RequireRole.  The identity is the claim set of the login token
// and is never refreshed from storage during the request.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/course-stream/internal/model"
)

const identityKey = "identity"

func setIdentity(c echo.Context, who model.Identity) {
    c.Set(identityKey, who)
    c.Set("user_id", who.ID)
    c.Set("role", who.Role)
}

// IdentityFrom returns the identity attached by RequireRole.  ok is false
// when the route is not behind the gate.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
    who, ok := c.Get(identityKey).(model.Identity)
    return who, ok
}

// userID returns the authenticated user's id, or "anon" for requests that
// have not passed the gate.
func userID(c echo.Context) string {
    if who, ok := IdentityFrom(c); ok && who.ID != "" {
        return who.ID
    }
    return "anon"
}
