package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-api/internal/api/dto"
	"github.com/spec-kit/school-api/internal/domain"
	"github.com/spec-kit/school-api/internal/repository"
	"github.com/spec-kit/school-api/internal/service"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// StudentsHandler exposes the named-entity student endpoints.
type StudentsHandler struct {
	students *service.StudentService
}

// NewStudentsHandler constructs handler.
func NewStudentsHandler(studentService *service.StudentService) *StudentsHandler {
	return &StudentsHandler{students: studentService}
}

// List handles GET /api/students.
func (h *StudentsHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 10)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	filter := repository.StudentFilter{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if grade := c.QueryInt("grade", 0); grade > 0 {
		filter.Grade = &grade
	}
	if groupID := int64(c.QueryInt("group_id", 0)); groupID > 0 {
		filter.GroupID = &groupID
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}

	students, total, err := h.students.List(c.UserContext(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, studentResponse(&students[i]))
	}
	return c.JSON(fiber.Map{
		"data":       items,
		"pagination": service.NewPagination(page, size, total),
	})
}

// Get handles GET /api/students/:id.
func (h *StudentsHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	student, err := h.students.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": studentResponse(student)})
}

// Create handles POST /api/students.
func (h *StudentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	student, err := h.students.Create(c.UserContext(), service.StudentCreateInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Grade:    req.Grade,
		IDNum:    req.IDNum,
		Province: req.Province,
		Address:  req.Address,
		Password: req.Password,
		GroupID:  req.GroupID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": studentResponse(&domain.StudentDetail{Student: *student}),
	})
}

// Update handles PUT /api/students/:id.
func (h *StudentsHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	student, err := h.students.Update(c.UserContext(), id, service.StudentUpdateInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Grade:    req.Grade,
		IDNum:    req.IDNum,
		Province: req.Province,
		Address:  req.Address,
		GroupID:  req.GroupID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": studentResponse(student)})
}

// Delete handles DELETE /api/students/:id.
func (h *StudentsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.students.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "student_deleted"}})
}

func parseIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

func studentResponse(student *domain.StudentDetail) dto.StudentResponse {
	return dto.StudentResponse{
		StudentNumber: student.StudentNumber,
		Name:          student.Name,
		Surname:       student.Surname,
		Email:         student.Email,
		Grade:         student.Grade,
		IDNum:         student.IDNum,
		Province:      student.Province,
		Address:       student.Address,
		GroupID:       student.GroupID,
		GroupName:     student.GroupName,
		SchoolName:    student.SchoolName,
		CreatedAt:     student.CreatedAt,
		UpdatedAt:     student.UpdatedAt,
	}
}
