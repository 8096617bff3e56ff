package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-api/internal/api/dto"
	"github.com/spec-kit/school-api/internal/domain"
	"github.com/spec-kit/school-api/internal/repository"
	"github.com/spec-kit/school-api/internal/service"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// SessionsHandler exposes class session endpoints.
type SessionsHandler struct {
	sessions *service.SessionService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(sessionService *service.SessionService) *SessionsHandler {
	return &SessionsHandler{sessions: sessionService}
}

// List handles GET /api/sessions.
func (h *SessionsHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 10)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	filter := repository.SessionFilter{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if subject := int64(c.QueryInt("subject", 0)); subject > 0 {
		filter.Subject = &subject
	}
	if hoster := int64(c.QueryInt("hoster", 0)); hoster > 0 {
		filter.Hoster = &hoster
	}
	if status := c.Query("status"); status != "" {
		sessionStatus := domain.SessionStatus(status)
		filter.Status = &sessionStatus
	}
	if from := c.Query("date_from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return apperrors.NewValidationError("date_from must be RFC3339", nil)
		}
		filter.DateFrom = &parsed
	}
	if to := c.Query("date_to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return apperrors.NewValidationError("date_to must be RFC3339", nil)
		}
		filter.DateTo = &parsed
	}

	sessions, total, err := h.sessions.List(c.UserContext(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, sessionResponse(&sessions[i]))
	}
	return c.JSON(fiber.Map{
		"data":       items,
		"pagination": service.NewPagination(page, size, total),
	})
}

// Create handles POST /api/sessions.
func (h *SessionsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.sessions.Create(c.UserContext(), service.SessionCreateInput{
		Hoster:      req.Hoster,
		Capacity:    req.Capacity,
		Name:        req.Name,
		Subject:     req.Subject,
		Description: req.Description,
		Duration:    req.Duration,
		StartTime:   req.StartTime,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": sessionResponse(&domain.SessionSummary{Session: *session}),
	})
}

// Enroll handles POST /api/sessions/enroll.
func (h *SessionsHandler) Enroll(c *fiber.Ctx) error {
	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.sessions.Enroll(c.UserContext(), req.SessionID, req.StudentID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "enrolled"}})
}

func sessionResponse(session *domain.SessionSummary) dto.SessionResponse {
	return dto.SessionResponse{
		ID:            session.ID,
		Hoster:        session.Hoster,
		HosterName:    session.HosterName,
		Capacity:      session.Capacity,
		Name:          session.Name,
		Subject:       session.Subject,
		SubjectName:   session.SubjectName,
		Description:   session.Description,
		Duration:      session.Duration,
		StartTime:     session.StartTime,
		Status:        session.Status,
		EnrolledCount: session.EnrolledCount,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
}
