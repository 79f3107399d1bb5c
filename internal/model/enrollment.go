package model

import "time"

// Enrollment links a student to a course in the `enrollments` table. The
// (StudentID, CourseID) pair is unique and is the only predicate that
// grants a student access to the course's modules.
type Enrollment struct {
    StudentID  string    // enrollments.student_id
    CourseID   string    // enrollments.course_id
    EnrolledAt time.Time // enrollments.created_at
}
