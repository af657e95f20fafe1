package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/service"
	"github.com/smartcia/assessment-api/internal/utils"
)

// AuthHandler handles login, logout and session introspection.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes. protected guards the routes that need a token.
func (h *AuthHandler) Register(router fiber.Router, protected fiber.Handler) {
	router.Post("/login", h.login)
	router.Get("/me", protected, h.me)
	router.Post("/logout", protected, h.logout)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Authenticate(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to authenticate")
		}
	}

	return utils.SendSuccess(c, "authenticated", response)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.CurrentUser(c.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			return utils.SendError(c, fiber.StatusUnauthorized, "no active session")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load session")
	}

	return utils.SendSuccess(c, "session active", dto.NewUserResponse(user))
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.Context()); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("logout failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to log out")
	}

	return utils.SendSuccess(c, "logged out", nil)
}
