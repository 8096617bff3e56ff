package dto

import (
	"time"

	"github.com/spec-kit/school-api/internal/domain"
)

// CreateSessionRequest payload for new sessions.
type CreateSessionRequest struct {
	Hoster      int64     `json:"hoster"`
	Capacity    int       `json:"capacity"`
	Name        string    `json:"name"`
	Subject     int64     `json:"subject"`
	Description *string   `json:"description"`
	Duration    int       `json:"duration"`
	StartTime   time.Time `json:"start_time"`
}

// EnrollRequest payload for enrolling a student.
type EnrollRequest struct {
	SessionID int64 `json:"sessionId"`
	StudentID int64 `json:"studentId"`
}

// SessionResponse is a session row with joined names and enrollment count.
type SessionResponse struct {
	ID            int64                `json:"id"`
	Hoster        int64                `json:"hoster"`
	HosterName    *string              `json:"hoster_name,omitempty"`
	Capacity      int                  `json:"capacity"`
	Name          string               `json:"name"`
	Subject       int64                `json:"subject"`
	SubjectName   *string              `json:"subject_name,omitempty"`
	Description   *string              `json:"description"`
	Duration      int                  `json:"duration"`
	StartTime     time.Time            `json:"start_time"`
	Status        domain.SessionStatus `json:"status"`
	EnrolledCount int                  `json:"enrolled_count"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
