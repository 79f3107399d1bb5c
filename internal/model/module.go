package model

import "time"

// Module is a row in the `modules` table. VideoID is the external asset
// identifier of the module's video on the streaming edge; it is the
// subject of every media grant minted for the module.
//
// Fields:
//  ID          – primary key.
//  CourseID    – parent course (courses.id).
//  Title       – display title.
//  Description – optional long text.
//  VideoID     – streaming asset id.
//  CreatedAt   – creation timestamp, used for ordering inside a course.
//  UpdatedAt   – last update timestamp.
type Module struct {
    ID          string    `json:"id"`
    CourseID    string    `json:"courseId"`
    Title       string    `json:"title"`
    Description *string   `json:"description"`
    VideoID     string    `json:"videoId"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}
