package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/course-stream/internal/middleware"
	"github.com/iliyamo/course-stream/internal/model"
	"github.com/iliyamo/course-stream/internal/queue"
	"github.com/iliyamo/course-stream/internal/repository"
	"github.com/iliyamo/course-stream/internal/service"
	"github.com/iliyamo/course-stream/internal/stream"
)

// Authorizer is the enrollment check in front of course and module content.
type Authorizer interface {
	AuthorizeModule(ctx context.Context, who model.Identity, moduleID string) (*model.Module, error)
	AuthorizeCourse(ctx context.Context, who model.Identity, courseID string) (*model.CourseDetail, error)
}

// GrantIssuer mints playback grants bound to a client address.
type GrantIssuer interface {
	Issue(videoID, clientIP string) (stream.Grant, error)
}

// AuditPublisher records access decisions.  Implementations must not block
// the request (see queue.Dispatcher); failures are theirs to log.
type AuditPublisher interface {
	Publish(ctx context.Context, ev queue.AccessEvent) error
}

// StudentCourses lists the courses a student is enrolled in.
type StudentCourses interface {
	ListEnrolled(ctx context.Context, studentID string) ([]model.CourseSummary, error)
}

// UserGetter loads a user by id.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

// StudentHandler serves the routes behind the STUDENT gate.
type StudentHandler struct {
	Auth    Authorizer
	Grants  GrantIssuer
	Audit   AuditPublisher
	Courses StudentCourses
	Users   UserGetter
	Log     *zap.Logger
}

func NewStudentHandler(auth Authorizer, grants GrantIssuer, audit AuditPublisher, courses StudentCourses, users UserGetter, log *zap.Logger) *StudentHandler {
	if auth == nil || grants == nil || courses == nil || users == nil {
		panic("nil dependency passed to NewStudentHandler")
	}
	if audit == nil {
		audit = queue.Discard{}
	}
	return &StudentHandler{Auth: auth, Grants: grants, Audit: audit, Courses: courses, Users: users, Log: log}
}

type viewResp struct {
	SignedURL string `json:"signedUrl"`
}

// Me returns the verified claim set of the caller.
func (h *StudentHandler) Me(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token provided"})
	}
	return c.JSON(http.StatusOK, who)
}

// ListCourses returns the courses the caller is enrolled in.  A token whose
// user row has since been deleted gets 404.
func (h *StudentHandler) ListCourses(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token provided"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, who.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		h.Log.Error("list courses: load student", zap.String("student_id", who.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	courses, err := h.Courses.ListEnrolled(ctx, who.ID)
	if err != nil {
		h.Log.Error("list courses", zap.String("student_id", who.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, courses)
}

// GetCourse returns a course and its modules.  Unknown courses and courses
// the caller is not enrolled in both answer 403.
func (h *StudentHandler) GetCourse(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token provided"})
	}
	courseID := strings.TrimSpace(c.Param("courseId"))
	if courseID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Auth.AuthorizeCourse(ctx, who, courseID)
	switch {
	case errors.Is(err, service.ErrCourseDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	case err != nil:
		h.Log.Error("get course", zap.String("course_id", courseID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, d)
}

// ViewModule authorizes the caller against the module's course and returns
// a short-lived playback URL bound to the caller's address.  The grant is
// not stored anywhere.
func (h *StudentHandler) ViewModule(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token provided"})
	}
	moduleID := strings.TrimSpace(c.Param("moduleId"))
	if moduleID == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	clientIP := c.RealIP()
	m, err := h.Auth.AuthorizeModule(ctx, who, moduleID)
	switch {
	case errors.Is(err, service.ErrModuleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrNotEnrolled):
		h.audit(ctx, queue.AccessEvent{
			Outcome:   queue.OutcomeNotEnrolled,
			StudentID: who.ID,
			ModuleID:  moduleID,
			ClientIP:  clientIP,
		})
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not enrolled"})
	case err != nil:
		h.Log.Error("view module: authorize", zap.String("module_id", moduleID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if m.VideoID == "" {
		h.Log.Error("view module: module has no video", zap.String("module_id", m.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	g, err := h.Grants.Issue(m.VideoID, clientIP)
	if err != nil {
		h.Log.Error("view module: issue grant", zap.String("module_id", m.ID), zap.String("client_ip", clientIP), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	h.audit(ctx, queue.AccessEvent{
		Outcome:   queue.OutcomeGranted,
		StudentID: who.ID,
		ModuleID:  m.ID,
		CourseID:  m.CourseID,
		VideoID:   m.VideoID,
		ClientIP:  clientIP,
		ExpiresAt: g.ExpiresAt.UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, viewResp{SignedURL: g.URL})
}

// audit hands ev to the audit publisher.  The response never depends on
// the outcome.
func (h *StudentHandler) audit(ctx context.Context, ev queue.AccessEvent) {
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	_ = h.Audit.Publish(ctx, ev)
}
