// Package repository contains data access logic separated from HTTP handlers.
// This file holds the course queries a student can reach.  Every query that
// returns course content is joined against enrollments so that the
// membership check and the read happen in one statement.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/course-stream/internal/model"
)

// CourseRepo encapsulates the queries related to courses.
type CourseRepo struct {
	db *sql.DB
}

// NewCourseRepo constructs a CourseRepo with the provided DB handle.
func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

// ListEnrolled returns the courses the student is enrolled in, ordered by
// title.
func (r *CourseRepo) ListEnrolled(ctx context.Context, studentID string) ([]model.CourseSummary, error) {
	const q = `SELECT c.id, c.title, c.description
	           FROM courses c
	           JOIN enrollments e ON e.course_id = c.id
	           WHERE e.student_id = ?
	           ORDER BY c.title, c.id`
	rows, err := r.db.QueryContext(ctx, q, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	defer rows.Close()

	out := make([]model.CourseSummary, 0)
	for rows.Next() {
		var c model.CourseSummary
		if err := rows.Scan(&c.ID, &c.Title, &c.Description); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return out, nil
}

// GetEnrolledDetail returns the course with its modules, but only when the
// student is enrolled in it.  A missing course and a course the student is
// not enrolled in are indistinguishable here: both yield ErrNotFound.
func (r *CourseRepo) GetEnrolledDetail(ctx context.Context, courseID, studentID string) (*model.CourseDetail, error) {
	const qCourse = `SELECT c.id, c.title, c.description, c.created_at, c.updated_at
	                 FROM courses c
	                 WHERE c.id = ?
	                   AND EXISTS (SELECT 1 FROM enrollments e WHERE e.course_id = c.id AND e.student_id = ?)`
	var d model.CourseDetail
	err := r.db.QueryRowContext(ctx, qCourse, courseID, studentID).
		Scan(&d.ID, &d.Title, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get enrolled course: %w", err)
	}

	const qModules = `SELECT id, course_id, title, description, video_id, created_at, updated_at
	                  FROM modules WHERE course_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, qModules, courseID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()
	d.Modules = make([]model.Module, 0)
	for rows.Next() {
		var m model.Module
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.VideoID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		d.Modules = append(d.Modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return &d, nil
}
