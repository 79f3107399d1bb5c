// Package service holds the resource-level authorization that runs after
// the authentication middleware has established who the caller is.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/course-stream/internal/model"
	"github.com/iliyamo/course-stream/internal/repository"
)

// Authorization outcomes.  Anything else returned by the authorizer is an
// internal failure of the store.
var (
	ErrModuleNotFound = errors.New("module not found")
	ErrNotEnrolled    = errors.New("not enrolled")
	ErrCourseDenied   = errors.New("course access denied")
)

// ModuleFinder resolves a module and its parent course id.
type ModuleFinder interface {
	GetByID(ctx context.Context, id string) (*model.Module, error)
}

// EnrollmentChecker answers the enrollment membership question.
type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
}

// CourseReader loads a course for a student in one existence+membership
// query.
type CourseReader interface {
	GetEnrolledDetail(ctx context.Context, courseID, studentID string) (*model.CourseDetail, error)
}

// EnrollmentAuthorizer decides whether a verified student may see a course
// or a module.  Enrollment is the only predicate it consults.
type EnrollmentAuthorizer struct {
	modules     ModuleFinder
	enrollments EnrollmentChecker
	courses     CourseReader
}

func NewEnrollmentAuthorizer(modules ModuleFinder, enrollments EnrollmentChecker, courses CourseReader) *EnrollmentAuthorizer {
	if modules == nil || enrollments == nil || courses == nil {
		panic("nil dependency passed to NewEnrollmentAuthorizer")
	}
	return &EnrollmentAuthorizer{modules: modules, enrollments: enrollments, courses: courses}
}

// AuthorizeModule resolves module → course and checks the enrollment.  A
// missing module is reported before the enrollment check (ErrModuleNotFound);
// an existing module in a course the student is not enrolled in yields
// ErrNotEnrolled.  On success the module is returned so the caller can
// read its video asset id.
func (a *EnrollmentAuthorizer) AuthorizeModule(ctx context.Context, who model.Identity, moduleID string) (*model.Module, error) {
	if who.Role != model.RoleStudent || who.ID == "" {
		return nil, ErrNotEnrolled
	}
	m, err := a.modules.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("resolve module %s: %w", moduleID, err)
	}
	ok, err := a.enrollments.IsEnrolled(ctx, who.ID, m.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !ok {
		return nil, ErrNotEnrolled
	}
	return m, nil
}

// AuthorizeCourse returns the course detail when the student is enrolled.
// Non-existence and non-membership fold into a single ErrCourseDenied so
// course ids cannot be enumerated through this path.
func (a *EnrollmentAuthorizer) AuthorizeCourse(ctx context.Context, who model.Identity, courseID string) (*model.CourseDetail, error) {
	if who.Role != model.RoleStudent || who.ID == "" {
		return nil, ErrCourseDenied
	}
	d, err := a.courses.GetEnrolledDetail(ctx, courseID, who.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseDenied
		}
		return nil, fmt.Errorf("load course %s: %w", courseID, err)
	}
	return d, nil
}
