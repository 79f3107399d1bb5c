// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-stream/internal/handler"
	"github.com/iliyamo/course-stream/internal/middleware"
)

// RegisterRoutes registers the unauthenticated health and root routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts the login endpoint.  limit guards it against
// credential stuffing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/api/v1/auth")
	g.POST("/login", a.Login, limit)
}

// RegisterStudent mounts the STUDENT-only routes.  viewLimit runs after the
// gate so it can key on the verified user id.
func RegisterStudent(e *echo.Echo, s *handler.StudentHandler, jwtSecret string, viewLimit echo.MiddlewareFunc) {
	g := e.Group("/api/v1/student", middleware.RequireStudent(jwtSecret))
	g.GET("/me", s.Me)
	g.GET("/courses", s.ListCourses)
	g.GET("/courses/:courseId", s.GetCourse)
	g.GET("/modules/:moduleId/view", s.ViewModule, viewLimit)
}

// RegisterAdmin mounts the ADMIN-only routes.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/api/v1/admin", middleware.RequireAdmin(jwtSecret))
	g.GET("/me", a.Me)
	g.GET("/students/:studentId/enrollments", a.ListEnrollments)
	g.PUT("/students/:studentId/enrollments/:courseId", a.GrantEnrollment)
	g.DELETE("/students/:studentId/enrollments/:courseId", a.RevokeEnrollment)
}
