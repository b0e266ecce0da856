package handlers

import (
	"strings"

	"github.com/datahub/backend/internal/catalog"
	"github.com/datahub/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type TagsHandler struct {
	Catalog *catalog.Service
}

func NewTagsHandler(svc *catalog.Service) *TagsHandler {
	return &TagsHandler{Catalog: svc}
}

func (h *TagsHandler) List(c *fiber.Ctx) error {
	tags, err := h.Catalog.ListTags(c.UserContext())
	if err != nil {
		return respondError(c, err, "list_tags_failed", "failed listing tags")
	}
	return utils.Success(c, fiber.StatusOK, tags)
}

// Create resolves the tag by name: 201 when it was inserted, 200 when it
// already existed.
func (h *TagsHandler) Create(c *fiber.Ctx) error {
	body, err := jsonBody(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}
	name, _ := stringField(body, "name")
	if strings.TrimSpace(name) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	tag, created, err := h.Catalog.ResolveTag(c.UserContext(), name)
	if err != nil {
		return respondError(c, err, "resolve_tag_failed", "failed creating tag")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return utils.Success(c, status, tag)
}
