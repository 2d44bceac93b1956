package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edumoto/classwork-api/internal/dto"
	"github.com/edumoto/classwork-api/internal/service"
	"github.com/edumoto/classwork-api/internal/utils"
)

// SubmissionHandler wires submission HTTP routes.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group. The optional
// submitLimiter throttles submission creation per student.
func (h *SubmissionHandler) Register(router fiber.Router, teacherOnly, studentOnly, submitLimiter fiber.Handler) {
	if submitLimiter != nil {
		router.Post("", studentOnly, submitLimiter, h.create)
	} else {
		router.Post("", studentOnly, h.create)
	}
	router.Get("/mine", studentOnly, h.listMine)
	router.Get("/assignment/:id", teacherOnly, h.listByAssignment)
	router.Patch("/:id/review", teacherOnly, h.review)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Create(c.Context(), actor, payload)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	submissions, err := h.service.ListMine(c.Context(), actor)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) listByAssignment(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListByAssignment(c.Context(), actor, assignmentID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) review(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Review(c.Context(), actor, id, payload)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission reviewed", submission)
}
