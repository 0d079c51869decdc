package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codelab-grader/internal/dto"
	"github.com/noah-isme/codelab-grader/internal/service"
	"github.com/noah-isme/codelab-grader/internal/utils"
)

// AdminHandler serves installation setup and the teacher console.
type AdminHandler struct {
	classrooms service.ClassroomService
	status     service.StatusService
	logger     zerolog.Logger
}

// NewAdminHandler builds the teacher console handler.
func NewAdminHandler(classrooms service.ClassroomService, status service.StatusService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		classrooms: classrooms,
		status:     status,
		logger:     logger.With().Str("component", "admin_handler").Logger(),
	}
}

// RegisterSystem attaches the installation routes.
func (h *AdminHandler) RegisterSystem(router fiber.Router) {
	router.Get("/info", h.info)
	router.Post("/setup", h.setup)
}

// Register attaches the teacher console routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Post("/activate", h.activate)
	router.Post("/progress", h.progress)
	router.Get("/status", h.board)
}

func (h *AdminHandler) info(c *fiber.Ctx) error {
	info, err := h.classrooms.SystemInfo(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "system info retrieved", info)
}

func (h *AdminHandler) setup(c *fiber.Ctx) error {
	var payload dto.SetupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	classes, err := h.classrooms.Setup(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", classes)
}

func (h *AdminHandler) activate(c *fiber.Ctx) error {
	var payload dto.ActivateClassRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.classrooms.Activate(c.UserContext(), payload); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "classroom activated", nil)
}

func (h *AdminHandler) progress(c *fiber.Ctx) error {
	var payload dto.ProgressUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.classrooms.UpdateProgress(c.UserContext(), payload); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "progress updated", nil)
}

func (h *AdminHandler) board(c *fiber.Ctx) error {
	classroomID, err := parseRequiredQueryUint(c, "classroom_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	board, err := h.status.Board(c.UserContext(), classroomID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "status retrieved", board)
}

func (h *AdminHandler) handleError(c *fiber.Ctx, err error) error {
	if message, ok := validationMessage(err); ok {
		return utils.SendError(c, fiber.StatusBadRequest, message)
	}

	switch {
	case errors.Is(err, service.ErrClassroomNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "classroom not found")
	case errors.Is(err, service.ErrCourseNotFound), errors.Is(err, service.ErrChapterNotFound), errors.Is(err, service.ErrInvalidName):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
