package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/uwuweb/uwuweb-api/internal/dto"
	"github.com/uwuweb/uwuweb-api/internal/service"
	"github.com/uwuweb/uwuweb-api/internal/utils"
)

// AttendanceHandler manages attendance recording, summaries and periods.
type AttendanceHandler struct {
	service service.AttendanceService
	logger  zerolog.Logger
}

// NewAttendanceHandler builds an attendance handler instance.
func NewAttendanceHandler(service service.AttendanceService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// RegisterReads attaches the routes every authenticated role may call.
func (h *AttendanceHandler) RegisterReads(router fiber.Router) {
	router.Get("/summary", h.summary)
}

// RegisterWrites attaches the teacher/admin recording routes.
func (h *AttendanceHandler) RegisterWrites(router fiber.Router) {
	router.Post("", h.record)
	router.Post("/periods", h.addPeriod)
	router.Delete("/periods/:id", h.deletePeriod)
}

func (h *AttendanceHandler) record(c *fiber.Ctx) error {
	var payload dto.AttendanceRecordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Record(c.Context(), actorFromContext(c), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance recorded", fiber.Map{"success": true})
}

func (h *AttendanceHandler) summary(c *fiber.Ctx) error {
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil || studentID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "student_id is required")
	}

	filter := dto.AttendanceSummaryFilter{StudentID: *studentID}

	if classID, err := parseQueryUint(c, "class_id"); err == nil && classID != nil {
		filter.ClassID = classID
	}

	if from := c.Query("date_from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid date_from")
		}
		filter.DateFrom = &parsed
	}

	if to := c.Query("date_to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid date_to")
		}
		filter.DateTo = &parsed
	}

	response, err := h.service.Summary(c.Context(), actorFromContext(c), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attendance summary", response)
}

func (h *AttendanceHandler) addPeriod(c *fiber.Ctx) error {
	var payload dto.PeriodCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	period, err := h.service.AddPeriod(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "period created", period)
}

func (h *AttendanceHandler) deletePeriod(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeletePeriod(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "period deleted", fiber.Map{"success": true})
}

func (h *AttendanceHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "period not found")
	case errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrEnrollmentOutsideClass):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
