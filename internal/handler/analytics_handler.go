package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/service"
	"github.com/smartcia/assessment-api/internal/utils"
)

// AnalyticsHandler serves per-exam result aggregates.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs an analytics handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register wires analytics routes.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/exams/:id", h.examAnalytics)
}

func (h *AnalyticsHandler) examAnalytics(c *fiber.Ctx) error {
	response, err := h.service.ExamAnalytics(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute analytics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute analytics")
	}

	return utils.SendSuccess(c, "analytics computed", response)
}
