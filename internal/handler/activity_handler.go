package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edumoto/classwork-api/internal/dto"
	"github.com/edumoto/classwork-api/internal/service"
	"github.com/edumoto/classwork-api/internal/utils"
)

// ActivityHandler exposes the caller's own audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	req := dto.ActivityListRequest{
		Page:       parseQueryInt(c, "page"),
		PageSize:   parseQueryInt(c, "limit"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}

	entries, err := h.service.ListForActor(c.Context(), actor, req)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
