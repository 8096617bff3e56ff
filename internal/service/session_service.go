package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/school-api/internal/auth"
	"github.com/spec-kit/school-api/internal/domain"
	"github.com/spec-kit/school-api/internal/events"
	"github.com/spec-kit/school-api/internal/repository"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// SessionCreateInput describes a new class session.
type SessionCreateInput struct {
	Hoster      int64
	Capacity    int
	Name        string
	Subject     int64
	Description *string
	Duration    int
	StartTime   time.Time
}

// SessionService coordinates session workflows.
type SessionService struct {
	sessions   repository.SessionRepository
	dispatcher events.Dispatcher
}

// NewSessionService constructs the service.
func NewSessionService(sessions repository.SessionRepository, dispatcher events.Dispatcher) *SessionService {
	return &SessionService{sessions: sessions, dispatcher: dispatcher}
}

// List returns session summaries with the total match count.
func (s *SessionService) List(ctx context.Context, filter repository.SessionFilter) ([]domain.SessionSummary, int, error) {
	sessions, total, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return sessions, total, nil
}

// Create validates required fields and persists the session.
func (s *SessionService) Create(ctx context.Context, input SessionCreateInput) (*domain.Session, error) {
	if input.Hoster == 0 || input.Capacity == 0 || input.Name == "" ||
		input.Subject == 0 || input.Duration == 0 || input.StartTime.IsZero() {
		return nil, apperrors.NewValidationError("required fields missing", nil)
	}
	if input.Capacity < 1 {
		return nil, apperrors.NewValidationError("capacity must be positive", nil)
	}

	session := &domain.Session{
		Hoster:      input.Hoster,
		Capacity:    input.Capacity,
		Name:        input.Name,
		Subject:     input.Subject,
		Description: input.Description,
		Duration:    input.Duration,
		StartTime:   input.StartTime,
		Status:      domain.SessionStatusScheduled,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventSessionCreated, events.SessionCreatedPayload{
		SessionID: session.ID,
		Name:      session.Name,
		Hoster:    session.Hoster,
		Capacity:  session.Capacity,
	})
	return session, nil
}

// Enroll adds a student to a session. Capacity and duplicate enrollment are
// enforced atomically by the repository transaction.
func (s *SessionService) Enroll(ctx context.Context, sessionID, studentID int64) error {
	if sessionID == 0 || studentID == 0 {
		return apperrors.NewValidationError("sessionId and studentId are required", nil)
	}

	err := s.sessions.Enroll(ctx, sessionID, studentID)
	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("session", nil)
	case errors.Is(err, repository.ErrSessionFull):
		return apperrors.NewConflict("session is full", nil)
	case errors.Is(err, repository.ErrAlreadyEnrolled):
		return apperrors.NewConflict("student already enrolled in this session", nil)
	default:
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventStudentEnrolled, events.StudentEnrolledPayload{
		SessionID: sessionID,
		StudentID: studentID,
	})
	return nil
}

func (s *SessionService) publish(ctx context.Context, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	var actor events.Actor
	if principal, ok := auth.PrincipalFrom(ctx); ok {
		actor = events.Actor{Role: principal.Role, ID: principal.ID}
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
