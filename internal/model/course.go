package model

import "time"

// Course is a row in the `courses` table.
type Course struct {
    ID          string    `json:"id"`
    Title       string    `json:"title"`
    Description *string   `json:"description"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

// CourseSummary is the reduced course view returned in enrollment listings.
type CourseSummary struct {
    ID          string  `json:"id"`
    Title       string  `json:"title"`
    Description *string `json:"description"`
}

// CourseDetail is a course together with its modules ordered by creation
// time. It is only ever built for a student enrolled in the course.
type CourseDetail struct {
    Course
    Modules []Module `json:"modules"`
}
