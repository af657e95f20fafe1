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

// ExamHandler handles exam authoring, publication and presentation views.
type ExamHandler struct {
	exams      service.ExamService
	generation service.GenerationService
	logger     zerolog.Logger
}

// NewExamHandler constructs an exam handler.
func NewExamHandler(exams service.ExamService, generation service.GenerationService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		exams:      exams,
		generation: generation,
		logger:     logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register wires exam routes. Authoring routes are teacher-only; the
// presentation view is open to any authenticated user.
func (h *ExamHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher)

	router.Get("", h.list)
	router.Post("", teacherOnly, h.create)
	router.Post("/generate", teacherOnly, h.generate)
	router.Get("/:id", teacherOnly, h.get)
	router.Post("/:id/publish", teacherOnly, h.publish)
	router.Get("/:id/presentation", h.presentation)
}

func (h *ExamHandler) create(c *fiber.Ctx) error {
	user, ok := userFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.exams.Create(c.Context(), payload, user)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, err)
		}
		if errors.Is(err, service.ErrInvalidQuestion) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create exam")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", response)
}

func (h *ExamHandler) list(c *fiber.Ctx) error {
	var filter dto.ExamFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	// students only ever see published exams, and never the answer keys
	filter.IncludeAnswerKeys = true
	if user, ok := userFromContext(c); ok && user.Role == models.RoleStudent {
		filter.PublishedOnly = true
		filter.IncludeAnswerKeys = false
	}

	response, err := h.exams.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list exams")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exams")
	}

	return utils.SendSuccess(c, "exams retrieved", response)
}

func (h *ExamHandler) get(c *fiber.Ctx) error {
	response, err := h.exams.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load exam")
	}

	return utils.SendSuccess(c, "exam retrieved", response)
}

func (h *ExamHandler) publish(c *fiber.Ctx) error {
	user, ok := userFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.exams.Publish(c.Context(), c.Params("id"), user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrNotExamOwner):
			return utils.SendError(c, fiber.StatusForbidden, "exam is owned by another teacher")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to publish exam")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to publish exam")
		}
	}

	return utils.SendSuccess(c, "exam published", response)
}

func (h *ExamHandler) presentation(c *fiber.Ctx) error {
	response, err := h.exams.Presentation(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrExamNotPublished):
			return utils.SendError(c, fiber.StatusConflict, "exam not published")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to build presentation")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to build presentation")
		}
	}

	return utils.SendSuccess(c, "presentation ready", response)
}

func (h *ExamHandler) generate(c *fiber.Ctx) error {
	if h.generation == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "question generation is not configured")
	}

	var payload dto.GenerateQuestionsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.generation.Generate(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, err)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("question generation failed")
		return utils.SendError(c, fiber.StatusBadGateway, "question generation failed")
	}

	return utils.SendSuccess(c, "questions generated", response)
}
