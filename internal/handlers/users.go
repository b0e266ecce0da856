package handlers

import (
	"github.com/datahub/backend/internal/catalog"
	"github.com/datahub/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type UsersHandler struct {
	Catalog *catalog.Service
}

func NewUsersHandler(svc *catalog.Service) *UsersHandler {
	return &UsersHandler{Catalog: svc}
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.Catalog.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err, "list_users_failed", "failed listing users")
	}
	return utils.Success(c, fiber.StatusOK, users)
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	userID, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.Catalog.GetUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "fetch_user_failed", "failed fetching user")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// Delete removes the user together with everything they own.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	userID, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.Catalog.DeleteUser(c.UserContext(), userID); err != nil {
		return respondError(c, err, "delete_user_failed", "failed deleting user")
	}
	return utils.NoContent(c)
}
