package handlers

import (
	"encoding/json"
	"strings"

	"github.com/datahub/backend/internal/catalog"
	"github.com/datahub/backend/internal/middleware"
	"github.com/datahub/backend/pkg/logger"
	"github.com/datahub/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type FilesHandler struct {
	Catalog *catalog.Service
}

func NewFilesHandler(svc *catalog.Service) *FilesHandler {
	return &FilesHandler{Catalog: svc}
}

func (h *FilesHandler) List(c *fiber.Ctx) error {
	files, err := h.Catalog.ListFiles(c.UserContext())
	if err != nil {
		return respondError(c, err, "list_files_failed", "failed listing files")
	}
	return utils.Success(c, fiber.StatusOK, files)
}

// Create accepts either a multipart upload or a JSON metadata record.
func (h *FilesHandler) Create(c *fiber.Ctx) error {
	var (
		in  catalog.CreateFileInput
		err error
	)
	if isMultipart(c) {
		in, err = h.multipartInput(c)
	} else {
		in, err = h.jsonInput(c)
	}
	if err != nil {
		return respondError(c, err, "create_file_failed", "failed creating file")
	}

	file, err := h.Catalog.CreateFile(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "create_file_failed", "failed creating file")
	}

	logger.InfoWithUser(file.UserID, "file_created", map[string]interface{}{
		"file_id":  file.ID,
		"filename": file.Filename,
		"uploaded": in.Upload != nil,
		"tags":     file.Tags,
	})

	return utils.Success(c, fiber.StatusCreated, file)
}

func (h *FilesHandler) jsonInput(c *fiber.Ctx) (catalog.CreateFileInput, error) {
	var in catalog.CreateFileInput

	body, err := jsonBody(c)
	if err != nil {
		return in, badRequest(err.Error())
	}

	if in.UserID, err = userIDField(body["user_id"]); err != nil {
		return in, err
	}
	in.Filename, _ = stringField(body, "filename")
	if raw, ok := body["description"]; ok {
		in.Description = nullableString(raw)
	}
	if raw, ok := body["tags"]; ok {
		in.Tags, _ = catalog.DecodeTagNames(raw)
	}
	if raw, ok := body["tags_with_meta"]; ok {
		if err := in.SetTagsWithMeta(raw); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (h *FilesHandler) multipartInput(c *fiber.Ctx) (catalog.CreateFileInput, error) {
	var in catalog.CreateFileInput

	if value := strings.TrimSpace(c.FormValue("user_id")); value != "" {
		id, ok := catalog.ParseIDString(value)
		if !ok {
			return in, badRequest("user_id must be a user id")
		}
		in.UserID = id
	}
	in.Filename = strings.TrimSpace(c.FormValue("filename"))
	if description := c.FormValue("description"); description != "" {
		in.Description = &description
	}
	in.TagString = c.FormValue("tags")
	if raw := strings.TrimSpace(c.FormValue("tags_with_meta")); raw != "" {
		if err := in.SetTagsWithMeta(json.RawMessage(raw)); err != nil {
			return in, err
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Filename == "" {
		return in, nil
	}

	src, err := fileHeader.Open()
	if err != nil {
		return in, err
	}
	// The service consumes the reader before returning; fasthttp keeps the
	// multipart temp file alive for the lifetime of the request.
	in.Upload = &catalog.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Size:        fileHeader.Size,
		Reader:      src,
	}
	return in, nil
}

func (h *FilesHandler) Get(c *fiber.Ctx) error {
	fileID, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Catalog.GetFile(c.UserContext(), fileID)
	if err != nil {
		return respondError(c, err, "fetch_file_failed", "failed fetching file")
	}
	return utils.Success(c, fiber.StatusOK, file)
}

// Update applies only the keys present in the body.
func (h *FilesHandler) Update(c *fiber.Ctx) error {
	fileID, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	body, err := jsonBody(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var patch catalog.FilePatch
	if raw, ok := body["filename"]; ok {
		var filename string
		if err := json.Unmarshal(raw, &filename); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "filename must be a string")
		}
		patch.Filename = &filename
	}
	if raw, ok := body["description"]; ok {
		patch.Description = nullableString(raw)
		patch.HasDescription = true
	}
	if raw, ok := body["tags_with_meta"]; ok {
		entries, list, err := catalog.DecodeTagsWithMeta(raw)
		if err != nil {
			return respondError(c, err, "update_file_failed", "failed updating file")
		}
		patch.TagsWithMeta = entries
		patch.HasTagsWithMeta = list
	}
	if raw, ok := body["tags"]; ok {
		patch.Tags, patch.HasTags = catalog.DecodeTagNames(raw)
	}

	file, err := h.Catalog.UpdateFile(c.UserContext(), fileID, patch)
	if err != nil {
		return respondError(c, err, "update_file_failed", "failed updating file")
	}

	logger.InfoWithUser(file.UserID, "file_updated", map[string]interface{}{
		"file_id":       file.ID,
		"tags_replaced": patch.HasTagsWithMeta || patch.HasTags,
	})
	return utils.Success(c, fiber.StatusOK, file)
}

func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	fileID, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Catalog.DeleteFile(c.UserContext(), fileID)
	if err != nil {
		return respondError(c, err, "delete_file_failed", "failed deleting file")
	}

	logger.InfoWithUser(file.UserID, "file_deleted", map[string]interface{}{
		"file_id":  file.ID,
		"filename": file.Filename,
	})
	return utils.NoContent(c)
}

// AttachTag links one tag to the file. A missing added_by defaults to the
// authenticated caller; an explicit null records no actor.
func (h *FilesHandler) AttachTag(c *fiber.Ctx) error {
	fileID, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	body, err := jsonBody(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}
	name, _ := stringField(body, "name")
	if strings.TrimSpace(name) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	var addedBy *uint
	if raw, ok := body["added_by"]; ok {
		if trimmed := strings.TrimSpace(string(raw)); trimmed != "" && trimmed != "null" {
			id, ok := catalog.ParseID(raw)
			if !ok {
				return utils.Error(c, fiber.StatusBadRequest, "added_by must be a user id")
			}
			addedBy = &id
		}
	} else if current := middleware.GetCurrentUser(c); current != nil {
		addedBy = &current.ID
	}

	link, created, err := h.Catalog.AttachTag(c.UserContext(), fileID, name, addedBy)
	if err != nil {
		return respondError(c, err, "attach_tag_failed", "failed attaching tag")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
		logger.Info("tag_attached", map[string]interface{}{
			"file_id":  link.FileID,
			"tag_id":   link.TagID,
			"added_by": link.AddedBy,
		})
	}
	return utils.Success(c, status, link)
}

func userIDField(raw json.RawMessage) (uint, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	id, ok := catalog.ParseID(raw)
	if !ok {
		return 0, badRequest("user_id must be a user id")
	}
	return id, nil
}

func nullableString(raw json.RawMessage) *string {
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		text := strings.TrimSpace(string(raw))
		return &text
	}
	return value
}
