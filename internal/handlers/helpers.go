package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/datahub/backend/internal/catalog"
	"github.com/datahub/backend/internal/middleware"
	"github.com/datahub/backend/pkg/logger"
	"github.com/datahub/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

var errInvalidID = errors.New("invalid id")

func parseID(value string) (uint, error) {
	id, ok := catalog.ParseIDString(value)
	if !ok {
		return 0, errInvalidID
	}
	return id, nil
}

// jsonBody decodes the request body into its top level keys so handlers can
// tell an absent key from a null one. An empty body yields an empty map.
func jsonBody(c *fiber.Ctx) (map[string]json.RawMessage, error) {
	body := map[string]json.RawMessage{}
	raw := c.Body()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.New("invalid request body")
	}
	if body == nil {
		body = map[string]json.RawMessage{}
	}
	return body, nil
}

func stringField(body map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := body[key]
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// respondError maps catalog errors onto HTTP statuses. Anything unrecognised
// is logged and reported as a 500 with the given fallback message.
func respondError(c *fiber.Ctx, err error, action, fallback string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, catalog.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, catalog.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, catalog.ErrUploadsDisabled):
		status = fiber.StatusServiceUnavailable
	}

	if status != fiber.StatusInternalServerError {
		var catalogErr *catalog.Error
		if errors.As(err, &catalogErr) {
			return utils.Error(c, status, catalogErr.Message)
		}
		return utils.Error(c, status, err.Error())
	}

	details := map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		logger.ErrorWithUser(user.ID, action, err, details)
	} else {
		logger.Error(action, err, details)
	}
	return utils.Error(c, status, fallback)
}

func badRequest(message string) error {
	return &catalog.Error{Kind: catalog.ErrInvalidInput, Message: message}
}
