package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/course-stream/internal/model"
	"github.com/iliyamo/course-stream/internal/repository"
)

type fakeStore struct {
	modules     map[string]model.Module
	courses     map[string]model.Course
	enrollments map[[2]string]bool
	err         error
	checks      int
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Module, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.modules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (f *fakeStore) IsEnrolled(_ context.Context, studentID, courseID string) (bool, error) {
	f.checks++
	return f.enrollments[[2]string{studentID, courseID}], nil
}

func (f *fakeStore) GetEnrolledDetail(_ context.Context, courseID, studentID string) (*model.CourseDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.courses[courseID]
	if !ok || !f.enrollments[[2]string{studentID, courseID}] {
		return nil, repository.ErrNotFound
	}
	d := &model.CourseDetail{Course: c}
	for _, m := range f.modules {
		if m.CourseID == courseID {
			d.Modules = append(d.Modules, m)
		}
	}
	return d, nil
}

func newStore() *fakeStore {
	return &fakeStore{
		modules: map[string]model.Module{
			"m1": {ID: "m1", CourseID: "c1", VideoID: "vid-1"},
			"m2": {ID: "m2", CourseID: "c2", VideoID: "vid-2"},
		},
		courses: map[string]model.Course{
			"c1": {ID: "c1", Title: "Go"},
			"c2": {ID: "c2", Title: "Rust"},
		},
		enrollments: map[[2]string]bool{{"student-a", "c1"}: true},
	}
}

var studentA = model.Identity{ID: "student-a", Email: "a@example.com", Role: model.RoleStudent}

func TestAuthorizeModule(t *testing.T) {
	tests := []struct {
		name     string
		who      model.Identity
		moduleID string
		wantErr  error
		wantVid  string
	}{
		{"enrolled course", studentA, "m1", nil, "vid-1"},
		{"other course", studentA, "m2", ErrNotEnrolled, ""},
		{"missing module", studentA, "nope", ErrModuleNotFound, ""},
		{"admin identity", model.Identity{ID: "admin", Role: model.RoleAdmin}, "m1", ErrNotEnrolled, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			a := NewEnrollmentAuthorizer(s, s, s)
			m, err := a.AuthorizeModule(context.Background(), tt.who, tt.moduleID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVid, m.VideoID)
		})
	}
}

func TestAuthorizeModuleNotFoundSkipsEnrollmentCheck(t *testing.T) {
	s := newStore()
	a := NewEnrollmentAuthorizer(s, s, s)
	_, err := a.AuthorizeModule(context.Background(), studentA, "missing")
	assert.ErrorIs(t, err, ErrModuleNotFound)
	assert.Zero(t, s.checks)
}

func TestAuthorizeModuleStoreFailure(t *testing.T) {
	s := newStore()
	s.err = errors.New("connection refused")
	a := NewEnrollmentAuthorizer(s, s, s)
	_, err := a.AuthorizeModule(context.Background(), studentA, "m1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModuleNotFound)
	assert.NotErrorIs(t, err, ErrNotEnrolled)
}

func TestAuthorizeModuleNeverLeaksUnenrolledCourse(t *testing.T) {
	s := newStore()
	a := NewEnrollmentAuthorizer(s, s, s)
	for id, m := range s.modules {
		if s.enrollments[[2]string{studentA.ID, m.CourseID}] {
			continue
		}
		got, err := a.AuthorizeModule(context.Background(), studentA, id)
		assert.Error(t, err, "module %s", id)
		assert.Nil(t, got)
	}
}

func TestAuthorizeCourse(t *testing.T) {
	s := newStore()
	a := NewEnrollmentAuthorizer(s, s, s)

	d, err := a.AuthorizeCourse(context.Background(), studentA, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Go", d.Title)
	require.Len(t, d.Modules, 1)
	assert.Equal(t, "m1", d.Modules[0].ID)

	_, err = a.AuthorizeCourse(context.Background(), studentA, "c2")
	assert.ErrorIs(t, err, ErrCourseDenied)

	// A course that does not exist gets the same answer as one the student
	// is not enrolled in.
	_, err = a.AuthorizeCourse(context.Background(), studentA, "c404")
	assert.ErrorIs(t, err, ErrCourseDenied)
}

func TestNewEnrollmentAuthorizerPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewEnrollmentAuthorizer(nil, nil, nil) })
}
