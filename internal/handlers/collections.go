package handlers

import (
	"encoding/json"
	"strings"

	"github.com/datahub/backend/internal/catalog"
	"github.com/datahub/backend/pkg/logger"
	"github.com/datahub/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type CollectionsHandler struct {
	Catalog *catalog.Service
}

func NewCollectionsHandler(svc *catalog.Service) *CollectionsHandler {
	return &CollectionsHandler{Catalog: svc}
}

func (h *CollectionsHandler) List(c *fiber.Ctx) error {
	collections, err := h.Catalog.ListCollections(c.UserContext())
	if err != nil {
		return respondError(c, err, "list_collections_failed", "failed listing collections")
	}
	return utils.Success(c, fiber.StatusOK, collections)
}

func (h *CollectionsHandler) Create(c *fiber.Ctx) error {
	body, err := jsonBody(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var in catalog.CreateCollectionInput
	in.Name, _ = stringField(body, "name")
	in.Name = strings.TrimSpace(in.Name)
	if in.UserID, err = userIDField(body["user_id"]); err != nil {
		return respondError(c, err, "create_collection_failed", "failed creating collection")
	}
	if raw, ok := body["file_ids"]; ok && string(raw) != "null" {
		if in.FileIDs, err = catalog.DecodeFileIDs(raw); err != nil {
			return respondError(c, err, "create_collection_failed", "failed creating collection")
		}
	}

	collection, err := h.Catalog.CreateCollection(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "create_collection_failed", "failed creating collection")
	}

	logger.InfoWithUser(collection.UserID, "collection_created", map[string]interface{}{
		"collection_id": collection.ID,
		"name":          collection.Name,
		"files":         len(collection.Files),
	})
	return utils.Success(c, fiber.StatusCreated, collection)
}

func (h *CollectionsHandler) Get(c *fiber.Ctx) error {
	collectionID, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid collection id")
	}

	collection, err := h.Catalog.GetCollection(c.UserContext(), collectionID)
	if err != nil {
		return respondError(c, err, "fetch_collection_failed", "failed fetching collection")
	}
	return utils.Success(c, fiber.StatusOK, collection)
}

// Update renames the collection and, when file_ids is present, replaces its
// membership. An empty file_ids list empties the collection.
func (h *CollectionsHandler) Update(c *fiber.Ctx) error {
	collectionID, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid collection id")
	}

	body, err := jsonBody(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var patch catalog.CollectionPatch
	if raw, ok := body["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "name must be a string")
		}
		name = strings.TrimSpace(name)
		patch.Name = &name
	}
	if raw, ok := body["file_ids"]; ok {
		if patch.FileIDs, err = catalog.DecodeFileIDs(raw); err != nil {
			return respondError(c, err, "update_collection_failed", "failed updating collection")
		}
		patch.HasFileIDs = true
	}

	collection, err := h.Catalog.UpdateCollection(c.UserContext(), collectionID, patch)
	if err != nil {
		return respondError(c, err, "update_collection_failed", "failed updating collection")
	}

	logger.InfoWithUser(collection.UserID, "collection_updated", map[string]interface{}{
		"collection_id":    collection.ID,
		"members_replaced": patch.HasFileIDs,
		"files":            len(collection.Files),
	})
	return utils.Success(c, fiber.StatusOK, collection)
}

func (h *CollectionsHandler) Delete(c *fiber.Ctx) error {
	collectionID, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid collection id")
	}

	if err := h.Catalog.DeleteCollection(c.UserContext(), collectionID); err != nil {
		return respondError(c, err, "delete_collection_failed", "failed deleting collection")
	}

	logger.Info("collection_deleted", map[string]interface{}{
		"collection_id": collectionID,
	})
	return utils.NoContent(c)
}
