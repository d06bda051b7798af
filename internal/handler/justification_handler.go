package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/uwuweb/uwuweb-api/internal/dto"
	"github.com/uwuweb/uwuweb-api/internal/service"
	"github.com/uwuweb/uwuweb-api/internal/utils"
	"github.com/uwuweb/uwuweb-api/pkg/filestore"
)

// JustificationHandler manages the absence justification endpoints.
type JustificationHandler struct {
	service service.JustificationService
	logger  zerolog.Logger
}

// NewJustificationHandler builds a justification handler instance.
func NewJustificationHandler(service service.JustificationService, logger zerolog.Logger) *JustificationHandler {
	return &JustificationHandler{
		service: service,
		logger:  logger.With().Str("component", "justification_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *JustificationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.submit)
	router.Patch("/:id", h.decide)
	router.Get("/:id/file", h.download)
}

func (h *JustificationHandler) submit(c *fiber.Ctx) error {
	var payload dto.JustificationSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	// The supporting document is optional.
	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	response, err := h.service.Submit(c.Context(), actorFromContext(c), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "justification submitted", response)
}

func (h *JustificationHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.JustificationDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := actorFromContext(c)
	if payload.Approved {
		err = h.service.Approve(c.Context(), actor, id)
	} else {
		err = h.service.Reject(c.Context(), actor, id, payload.RejectReason)
	}
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "justification decided", fiber.Map{"success": true})
}

func (h *JustificationHandler) list(c *fiber.Ctx) error {
	filter := service.JustificationFilter{}

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.StudentID = studentID
	filter.PendingOnly = c.QueryBool("pending")

	justifications, err := h.service.List(c.Context(), actorFromContext(c), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "justifications retrieved", justifications)
}

func (h *JustificationHandler) download(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reader, mime, err := h.service.Download(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, mime)
	c.Set(fiber.HeaderContentDisposition, "attachment")
	return c.SendStream(reader)
}

func (h *JustificationHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAttendanceNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "attendance record not found")
	case errors.Is(err, service.ErrNoJustificationFile):
		return utils.SendError(c, fiber.StatusNotFound, "no justification file")
	case errors.Is(err, service.ErrNotAuthorized):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrNotJustifiable),
		errors.Is(err, service.ErrJustificationEmpty),
		errors.Is(err, service.ErrJustificationMissing),
		errors.Is(err, service.ErrRejectReasonRequired),
		errors.Is(err, service.ErrResubmitLocked),
		errors.Is(err, filestore.ErrUnsupportedType),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
