package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edumoto/classwork-api/internal/service"
	"github.com/edumoto/classwork-api/internal/utils"
)

// actorFromCtx reconstructs the verified caller identity placed in locals by
// the JWT middleware.
func actorFromCtx(c *fiber.Ctx) (service.Actor, error) {
	userID, ok := c.Locals("user_id").(uint)
	if !ok || userID == 0 {
		return service.Actor{}, errors.New("authentication required")
	}

	role, _ := c.Locals("user_role").(string)

	return service.Actor{ID: userID, Role: role}, nil
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// respondServiceError maps a classified service failure onto a transport
// status. Unclassified errors are logged and hidden behind a 500.
func respondServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	switch service.KindOf(err) {
	case service.KindValidation:
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case service.KindNotFound:
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case service.KindForbidden:
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case service.KindInvalidState:
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case service.KindConflict:
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
