package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codelab-grader/internal/dto"
	"github.com/noah-isme/codelab-grader/internal/service"
	"github.com/noah-isme/codelab-grader/internal/utils"
)

// StudentHandler serves the student-facing endpoints.
type StudentHandler struct {
	students   service.StudentService
	classrooms service.ClassroomService
	logger     zerolog.Logger
}

// NewStudentHandler builds the student handler.
func NewStudentHandler(students service.StudentService, classrooms service.ClassroomService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students:   students,
		classrooms: classrooms,
		logger:     logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches the routes to the api root group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/student/active-classes", h.activeClasses)
	router.Post("/login", h.login)
	router.Get("/problems", h.problems)
}

func (h *StudentHandler) activeClasses(c *fiber.Ctx) error {
	classes, err := h.classrooms.ActiveClasses(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "active classes retrieved", classes)
}

func (h *StudentHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.students.Login(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "logged in", session)
}

func (h *StudentHandler) problems(c *fiber.Ctx) error {
	studentID, err := parseRequiredQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	problems, err := h.students.Problems(c.UserContext(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "problems retrieved", problems)
}

func (h *StudentHandler) handleError(c *fiber.Ctx, err error) error {
	if message, ok := validationMessage(err); ok {
		return utils.SendError(c, fiber.StatusBadRequest, message)
	}

	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrClassroomNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "classroom not found")
	case errors.Is(err, service.ErrInvalidName):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
