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
	"github.com/iliyamo/course-stream/internal/repository"
)

// EnrollmentStore manages the enrollment relation.
type EnrollmentStore interface {
	Grant(ctx context.Context, studentID, courseID string) error
	Revoke(ctx context.Context, studentID, courseID string) error
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
}

// AdminHandler serves the routes behind the ADMIN gate.
type AdminHandler struct {
	Enrollments EnrollmentStore
	Users       UserGetter
	Log         *zap.Logger
}

func NewAdminHandler(enrollments EnrollmentStore, users UserGetter, log *zap.Logger) *AdminHandler {
	if enrollments == nil || users == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Enrollments: enrollments, Users: users, Log: log}
}

type enrollmentResp struct {
	StudentID  string    `json:"studentId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// Me returns the verified claim set of the caller.
func (h *AdminHandler) Me(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no token provided"})
	}
	return c.JSON(http.StatusOK, who)
}

// ListEnrollments returns the enrollments of one student.
func (h *AdminHandler) ListEnrollments(c echo.Context) error {
	studentID := strings.TrimSpace(c.Param("studentId"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if resp, err := h.requireStudent(ctx, c, studentID); resp || err != nil {
		return err
	}
	list, err := h.Enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		h.Log.Error("list enrollments", zap.String("student_id", studentID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	out := make([]enrollmentResp, 0, len(list))
	for _, e := range list {
		out = append(out, enrollmentResp{StudentID: e.StudentID, CourseID: e.CourseID, EnrolledAt: e.EnrolledAt})
	}
	return c.JSON(http.StatusOK, out)
}

// GrantEnrollment enrolls a student in a course.  Granting an existing
// enrollment is a no-op.
func (h *AdminHandler) GrantEnrollment(c echo.Context) error {
	studentID := strings.TrimSpace(c.Param("studentId"))
	courseID := strings.TrimSpace(c.Param("courseId"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if resp, err := h.requireStudent(ctx, c, studentID); resp || err != nil {
		return err
	}
	err := h.Enrollments.Grant(ctx, studentID, courseID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	case err != nil:
		h.Log.Error("grant enrollment", zap.String("student_id", studentID), zap.String("course_id", courseID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	h.Log.Info("enrollment granted", zap.String("student_id", studentID), zap.String("course_id", courseID), zap.String("by", adminID(c)))
	return c.NoContent(http.StatusNoContent)
}

// RevokeEnrollment removes an enrollment.  The next view request for any
// module of the course is denied.
func (h *AdminHandler) RevokeEnrollment(c echo.Context) error {
	studentID := strings.TrimSpace(c.Param("studentId"))
	courseID := strings.TrimSpace(c.Param("courseId"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Enrollments.Revoke(ctx, studentID, courseID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
	case err != nil:
		h.Log.Error("revoke enrollment", zap.String("student_id", studentID), zap.String("course_id", courseID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	h.Log.Info("enrollment revoked", zap.String("student_id", studentID), zap.String("course_id", courseID), zap.String("by", adminID(c)))
	return c.NoContent(http.StatusNoContent)
}

// requireStudent writes a 404 when studentID is not a STUDENT account.  It
// reports true when a response has been written.
func (h *AdminHandler) requireStudent(ctx context.Context, c echo.Context, studentID string) (bool, error) {
	if studentID == "" {
		return true, c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
	}
	u, err := h.Users.GetByID(ctx, studentID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return true, c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
	case err != nil:
		h.Log.Error("load student", zap.String("student_id", studentID), zap.Error(err))
		return true, c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if u.Role != model.RoleStudent {
		return true, c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
	}
	return false, nil
}

func adminID(c echo.Context) string {
	if who, ok := middleware.IdentityFrom(c); ok {
		return who.ID
	}
	return ""
}
