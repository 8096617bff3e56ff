package events

import (
	"time"

	"github.com/spec-kit/school-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserLoggedIn    EventType = "user_logged_in"
	EventStudentCreated  EventType = "student_created"
	EventStudentUpdated  EventType = "student_updated"
	EventStudentDeleted  EventType = "student_deleted"
	EventSessionCreated  EventType = "session_created"
	EventStudentEnrolled EventType = "student_enrolled"
)

// Actor identifies the principal that triggered an event.
type Actor struct {
	Role domain.Role `json:"role"`
	ID   int64       `json:"id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// StudentPayload payload for student lifecycle events.
type StudentPayload struct {
	StudentNumber int64  `json:"student_number"`
	Email         string `json:"email,omitempty"`
}

// SessionCreatedPayload payload.
type SessionCreatedPayload struct {
	SessionID int64  `json:"session_id"`
	Name      string `json:"name"`
	Hoster    int64  `json:"hoster"`
	Capacity  int    `json:"capacity"`
}

// StudentEnrolledPayload payload.
type StudentEnrolledPayload struct {
	SessionID int64 `json:"session_id"`
	StudentID int64 `json:"student_id"`
}
