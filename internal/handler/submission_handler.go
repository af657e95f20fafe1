package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/middleware"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/service"
	"github.com/smartcia/assessment-api/internal/utils"
)

// SubmissionHandler handles exam submission and grade revision.
type SubmissionHandler struct {
	submissions service.SubmissionService
	grading     service.GradingService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs a submission handler.
func NewSubmissionHandler(submissions service.SubmissionService, grading service.GradingService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		grading:     grading,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register wires submission routes. Submitting is student-only, revising a
// grade is teacher-only.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", middleware.RequireRole(models.RoleStudent), h.submit)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id/grade", middleware.RequireRole(models.RoleTeacher), h.revise)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	user, ok := userFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.submissions.Submit(c.Context(), payload, user)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrExamNotPublished):
			return utils.SendError(c, fiber.StatusConflict, "exam not published")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to grade submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to grade submission")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission graded", response)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	var filter dto.SubmissionFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	// students only see their own submissions
	if user, ok := userFromContext(c); ok && user.Role == models.RoleStudent {
		filter.StudentID = &user.ID
	}

	response, err := h.submissions.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", response)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	response, err := h.submissions.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load submission")
	}

	if user, ok := userFromContext(c); ok && user.Role == models.RoleStudent && response.StudentID != user.ID {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	return utils.SendSuccess(c, "submission retrieved", response)
}

func (h *SubmissionHandler) revise(c *fiber.Ctx) error {
	user, ok := userFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.GradeRevisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.grading.Revise(c.Context(), c.Params("id"), payload, user)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrAnswerNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "answer not found in submission")
		case errors.Is(err, service.ErrScoreExceedsMax):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "score exceeds question marks")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to revise grade")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to revise grade")
		}
	}

	return utils.SendSuccess(c, "grade revised", response)
}
