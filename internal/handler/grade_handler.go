package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/uwuweb/uwuweb-api/internal/dto"
	"github.com/uwuweb/uwuweb-api/internal/service"
	"github.com/uwuweb/uwuweb-api/internal/utils"
)

// GradeHandler manages grade item and grade endpoints.
type GradeHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewGradeHandler builds a grade handler instance.
func NewGradeHandler(service service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// RegisterReads attaches the routes every authenticated role may call.
func (h *GradeHandler) RegisterReads(router fiber.Router) {
	router.Get("", h.listGrades)
}

// RegisterWrites attaches the teacher/admin grading routes.
func (h *GradeHandler) RegisterWrites(router fiber.Router) {
	router.Post("/items", h.createItem)
	router.Get("/items", h.listItems)
	router.Delete("/items/:id", h.deleteItem)
	router.Put("", h.upsertGrade)
}

func (h *GradeHandler) createItem(c *fiber.Ctx) error {
	var payload dto.GradeItemCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.service.CreateItem(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grade item created", item)
}

func (h *GradeHandler) listItems(c *fiber.Ctx) error {
	classSubjectID, err := parseQueryUint(c, "class_subject_id")
	if err != nil || classSubjectID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "class_subject_id is required")
	}

	items, err := h.service.ListItems(c.Context(), actorFromContext(c), *classSubjectID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grade items retrieved", items)
}

func (h *GradeHandler) deleteItem(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteItem(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grade item deleted", fiber.Map{"success": true})
}

func (h *GradeHandler) upsertGrade(c *fiber.Ctx) error {
	var payload dto.GradeUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grade, err := h.service.UpsertGrade(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grade recorded", grade)
}

func (h *GradeHandler) listGrades(c *fiber.Ctx) error {
	enrollmentID, err := parseQueryUint(c, "enrollment_id")
	if err != nil || enrollmentID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "enrollment_id is required")
	}

	grades, err := h.service.ListGradesForEnrollment(c.Context(), actorFromContext(c), *enrollmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grades retrieved", grades)
}

func (h *GradeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrGradeItemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "grade item not found")
	case errors.Is(err, service.ErrNotAuthorized):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrPointsExceedMax), isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
