// Package queue defines the access audit events exchanged over RabbitMQ
// and the publisher and consumer that move them.
package queue

// AccessQueueName is the durable queue carrying AccessEvent messages.
const AccessQueueName = "media.access"

// Access outcomes recorded in AccessEvent.Outcome.
const (
	OutcomeGranted     = "granted"
	OutcomeNotEnrolled = "not_enrolled"
)

// AccessEvent is published for every playback grant minted and every
// enrollment denial on the video view route.  The grant token itself is
// never part of the event.
type AccessEvent struct {
	Outcome    string `json:"outcome"`
	StudentID  string `json:"student_id"`
	ModuleID   string `json:"module_id"`
	CourseID   string `json:"course_id,omitempty"`
	VideoID    string `json:"video_id,omitempty"`
	ClientIP   string `json:"client_ip"`
	ExpiresAt  string `json:"expires_at,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
