package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/middleware"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/service"
	"github.com/smartcia/assessment-api/internal/utils"
)

// FeedbackHandler handles the question dispute log.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler constructs a feedback handler.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register wires feedback routes. Filing is student-only, resolving is
// teacher-only.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Post("", middleware.RequireRole(models.RoleStudent), h.file)
	router.Get("", h.list)
	router.Get("/count", middleware.RequireRole(models.RoleTeacher), h.unresolvedCount)
	router.Post("/:id/resolve", middleware.RequireRole(models.RoleTeacher), h.resolve)
}

func (h *FeedbackHandler) file(c *fiber.Ctx) error {
	user, ok := userFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.FeedbackCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.File(c.Context(), payload, user)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, err)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to file dispute")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to file dispute")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "dispute filed", response)
}

func (h *FeedbackHandler) list(c *fiber.Ctx) error {
	examID := strings.TrimSpace(c.Query("exam_id"))
	if examID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "exam_id query parameter is required")
	}
	onlyUnresolved := c.QueryBool("unresolved")

	response, err := h.service.ListForExam(c.Context(), examID, onlyUnresolved)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list disputes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list disputes")
	}

	return utils.SendSuccess(c, "disputes retrieved", response)
}

func (h *FeedbackHandler) unresolvedCount(c *fiber.Ctx) error {
	examID := strings.TrimSpace(c.Query("exam_id"))
	if examID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "exam_id query parameter is required")
	}

	count, err := h.service.UnresolvedCount(c.Context(), examID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to count disputes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to count disputes")
	}

	return utils.SendSuccess(c, "unresolved disputes counted", fiber.Map{"exam_id": examID, "unresolved": count})
}

func (h *FeedbackHandler) resolve(c *fiber.Ctx) error {
	response, err := h.service.Resolve(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrFeedbackNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "feedback not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to resolve dispute")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve dispute")
	}

	return utils.SendSuccess(c, "dispute resolved", response)
}
