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
	"github.com/spec-kit/school-api/internal/validation"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// StudentCreateInput describes a new student.
type StudentCreateInput struct {
	Name     string
	Surname  string
	Email    string
	Grade    int
	IDNum    string
	Province string
	Address  string
	Password string
	GroupID  *int64
}

// StudentUpdateInput carries partial updates; nil means leave unchanged.
type StudentUpdateInput struct {
	Name     *string
	Surname  *string
	Email    *string
	Grade    *int
	IDNum    *string
	Province *string
	Address  *string
	GroupID  *int64
}

// StudentService layers validation and conflict checks over the repository.
type StudentService struct {
	students   repository.StudentRepository
	cache      *auth.PrincipalCache
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewStudentService builds the service.
func NewStudentService(students repository.StudentRepository, cache *auth.PrincipalCache, dispatcher events.Dispatcher, bcryptCost int) *StudentService {
	return &StudentService{
		students:   students,
		cache:      cache,
		dispatcher: dispatcher,
		bcryptCost: bcryptCost,
	}
}

// List returns students with group/school names and the total match count.
func (s *StudentService) List(ctx context.Context, filter repository.StudentFilter) ([]domain.StudentDetail, int, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return students, total, nil
}

// GetByID fetches a single student.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*domain.StudentDetail, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("student", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return student, nil
}

// Create validates the input, rejects duplicate email/id-number, hashes the
// password and persists the row.
func (s *StudentService) Create(ctx context.Context, input StudentCreateInput) (*domain.Student, error) {
	if input.Name == "" || input.Surname == "" || input.Email == "" || input.Grade == 0 ||
		input.IDNum == "" || input.Province == "" || input.Address == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("all fields are required", nil)
	}
	if !validation.ValidEmail(input.Email) {
		return nil, apperrors.NewValidationError("invalid email format", nil)
	}
	if !validation.ValidGrade(input.Grade) {
		return nil, apperrors.NewValidationError("grade must be between 1 and 12", nil)
	}
	if !validation.ValidIDNumber(input.IDNum) {
		return nil, apperrors.NewValidationError("id number must be 13 digits", nil)
	}
	if !validation.ValidPassword(input.Password) {
		return nil, apperrors.NewValidationError("password must be at least 6 characters", nil)
	}

	conflict, err := s.students.HasConflict(ctx, 0, input.Email, input.IDNum)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if conflict {
		return nil, apperrors.NewConflict("email or id number already exists", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	student := &domain.Student{
		Name:         validation.Sanitize(input.Name),
		Surname:      validation.Sanitize(input.Surname),
		Email:        input.Email,
		Grade:        input.Grade,
		IDNum:        input.IDNum,
		Province:     input.Province,
		Address:      validation.Sanitize(input.Address),
		PasswordHash: hash,
		GroupID:      input.GroupID,
	}
	if err := s.students.Create(ctx, student); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email or id number already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventStudentCreated, student.StudentNumber, student.Email)
	return student, nil
}

// Update applies a partial update, re-running the conflict check against all
// rows except the student's own.
func (s *StudentService) Update(ctx context.Context, id int64, input StudentUpdateInput) (*domain.StudentDetail, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student := existing.Student

	if input.Name != nil {
		student.Name = validation.Sanitize(*input.Name)
	}
	if input.Surname != nil {
		student.Surname = validation.Sanitize(*input.Surname)
	}
	if input.Email != nil {
		if !validation.ValidEmail(*input.Email) {
			return nil, apperrors.NewValidationError("invalid email format", nil)
		}
		student.Email = *input.Email
	}
	if input.Grade != nil {
		if !validation.ValidGrade(*input.Grade) {
			return nil, apperrors.NewValidationError("grade must be between 1 and 12", nil)
		}
		student.Grade = *input.Grade
	}
	if input.IDNum != nil {
		if !validation.ValidIDNumber(*input.IDNum) {
			return nil, apperrors.NewValidationError("id number must be 13 digits", nil)
		}
		student.IDNum = *input.IDNum
	}
	if input.Province != nil {
		student.Province = *input.Province
	}
	if input.Address != nil {
		student.Address = validation.Sanitize(*input.Address)
	}
	if input.GroupID != nil {
		student.GroupID = input.GroupID
	}

	conflict, err := s.students.HasConflict(ctx, id, student.Email, student.IDNum)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if conflict {
		return nil, apperrors.NewConflict("email or id number already exists", nil)
	}

	if err := s.students.Update(ctx, &student); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("student", nil)
		}
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email or id number already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventStudentUpdated, id, student.Email)
	return s.GetByID(ctx, id)
}

// Delete removes a student and drops its cached existence entry so tokens
// minted for the account stop validating.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("student", nil)
		}
		return apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, domain.RoleStudent, id)
	s.publish(ctx, events.EventStudentDeleted, id, "")
	return nil
}

func (s *StudentService) publish(ctx context.Context, eventType events.EventType, studentNumber int64, email string) {
	if s.dispatcher == nil {
		return
	}
	actor := events.Actor{Role: domain.RoleStudent, ID: studentNumber}
	if principal, ok := auth.PrincipalFrom(ctx); ok {
		actor = events.Actor{Role: principal.Role, ID: principal.ID}
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   events.StudentPayload{StudentNumber: studentNumber, Email: email},
	})
}
