package middleware // middleware provides shared request processing for handlers

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/course-stream/internal/model"
)

// RequireAdmin gates a route group on the ADMIN role.
func RequireAdmin(secret string) echo.MiddlewareFunc {
    return RequireRole(secret, model.RoleAdmin)
}

// RequireStudent gates a route group on the STUDENT role.
func RequireStudent(secret string) echo.MiddlewareFunc {
    return RequireRole(secret, model.RoleStudent)
}
