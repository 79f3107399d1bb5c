package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/course-stream/internal/model"
)

// EnrollmentRepo persists the student ↔ course relation.
type EnrollmentRepo struct{ DB *sql.DB }

func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo { return &EnrollmentRepo{DB: db} }

// IsEnrolled reports whether (studentID, courseID) is in the relation.
func (r *EnrollmentRepo) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	const q = `SELECT EXISTS(
	               SELECT 1 FROM enrollments WHERE student_id = ? AND course_id = ?
	           )`
	var ok bool
	if err := r.DB.QueryRowContext(ctx, q, studentID, courseID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return ok, nil
}

// Grant enrolls the student.  Granting an existing enrollment is a no-op.
// ErrNotFound is returned when the student or the course does not exist.
func (r *EnrollmentRepo) Grant(ctx context.Context, studentID, courseID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO enrollments (student_id, course_id) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE student_id = student_id`,
		studentID, courseID)
	if err != nil {
		if isForeignKey(err) {
			return ErrNotFound
		}
		return fmt.Errorf("grant enrollment: %w", err)
	}
	return nil
}

// Revoke removes the enrollment; ErrNotFound when there was none.
func (r *EnrollmentRepo) Revoke(ctx context.Context, studentID, courseID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM enrollments WHERE student_id = ? AND course_id = ?",
		studentID, courseID)
	if err != nil {
		return fmt.Errorf("revoke enrollment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStudent returns the student's enrollments, newest first.
func (r *EnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT student_id, course_id, created_at FROM enrollments WHERE student_id = ? ORDER BY created_at DESC, course_id",
		studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()
	out := make([]model.Enrollment, 0)
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.StudentID, &e.CourseID, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
