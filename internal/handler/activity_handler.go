package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/service"
	"github.com/smartcia/assessment-api/internal/utils"
)

// ActivityHandler serves the audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.recent)
}

func (h *ActivityHandler) recent(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	entries, err := h.service.ListRecent(c.Context(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity")
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
