package handlers

import (
	"errors"
	"strings"

	"github.com/datahub/backend/internal/catalog"
	"github.com/datahub/backend/internal/middleware"
	"github.com/datahub/backend/internal/models"
	"github.com/datahub/backend/pkg/logger"
	"github.com/datahub/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Catalog *catalog.Service
}

func NewAuthHandler(svc *catalog.Service) *AuthHandler {
	return &AuthHandler{Catalog: svc}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  *catalog.UserView `json:"user"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)

	user, err := h.Catalog.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			logger.Warn("register_username_taken", map[string]interface{}{
				"username": req.Username,
				"ip":       c.IP(),
			})
		}
		return respondError(c, err, "register_failed", "failed to create user")
	}

	token, err := issueToken(user)
	if err != nil {
		return respondError(c, err, "token_generation_failed", "failed to generate token")
	}

	logger.InfoWithUser(user.ID, "user_registered", map[string]interface{}{
		"username": user.Username,
		"ip":       c.IP(),
	})

	return utils.Success(c, fiber.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)

	if req.Username == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "username and password required")
	}

	user, err := h.Catalog.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidCredentials) {
			logger.Warn("login_failed", map[string]interface{}{
				"username": req.Username,
				"ip":       c.IP(),
			})
		}
		return respondError(c, err, "login_failed", "failed to log in")
	}

	token, err := issueToken(user)
	if err != nil {
		return respondError(c, err, "token_generation_failed", "failed to generate token")
	}

	logger.InfoWithUser(user.ID, "user_login", map[string]interface{}{
		"username": user.Username,
		"ip":       c.IP(),
	})

	return utils.Success(c, fiber.StatusOK, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)
	if current == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.Catalog.GetUser(c.UserContext(), current.ID)
	if err != nil {
		return respondError(c, err, "fetch_current_user_failed", "failed fetching user")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

func issueToken(user *catalog.UserView) (string, error) {
	return utils.GenerateToken(&models.User{ID: user.ID, Username: user.Username})
}
