package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edumoto/classwork-api/internal/service"
	"github.com/edumoto/classwork-api/internal/utils"
)

// ReportHandler exposes the teacher analytics report.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches report endpoints to the router group.
func (h *ReportHandler) Register(router fiber.Router, teacherOnly fiber.Handler) {
	router.Get("/assignments", teacherOnly, h.teacherReport)
}

func (h *ReportHandler) teacherReport(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	report, err := h.service.TeacherReport(c.Context(), actor)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "report generated", report)
}
