package domain

import "time"

// SessionStatus tracks the lifecycle of a class session.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// Session is a class session hosted by a teacher or mentor.
type Session struct {
	ID          int64
	Hoster      int64
	Capacity    int
	Name        string
	Subject     int64
	Description *string
	Duration    int
	StartTime   time.Time
	Status      SessionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionSummary is a session joined with subject and hoster names plus the
// current enrollment count.
type SessionSummary struct {
	Session
	SubjectName   *string
	HosterName    *string
	EnrolledCount int
}
