package handlers

import (
	"net/http"
	"testing"
)

func TestTagsEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	var firstID uint

	t.Run("POST /api/tags creates", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/tags", map[string]any{"name": " finance "}, nil)
		assertStatus(t, resp, http.StatusCreated)
		tag := decodeJSONMap(t, resp)
		firstID = jsonID(t, tag)
		if tag["name"] != "finance" {
			t.Fatalf("expected trimmed name, got %v", tag["name"])
		}
	})

	t.Run("POST /api/tags returns the existing tag", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/tags", map[string]any{"name": "finance"}, nil)
		assertStatus(t, resp, http.StatusOK)
		if id := jsonID(t, decodeJSONMap(t, resp)); id != firstID {
			t.Fatalf("expected id %d, got %d", firstID, id)
		}
	})

	t.Run("POST /api/tags requires a name", func(t *testing.T) {
		for _, payload := range []string{`{}`, `{"name": "   "}`, `{"name": 5}`} {
			resp := performRawJSONRequest(t, env.app, http.MethodPost, "/api/tags", payload)
			assertError(t, resp, http.StatusBadRequest, "name is required")
		}
	})

	t.Run("GET /api/tags ordered by name", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/tags", map[string]any{"name": "data"}, nil)
		assertStatus(t, resp, http.StatusCreated)

		resp = performRequest(t, env.app, http.MethodGet, "/api/tags", nil, nil)
		assertStatus(t, resp, http.StatusOK)
		tags := decodeJSONList(t, resp)
		if len(tags) != 2 || tags[0]["name"] != "data" || tags[1]["name"] != "finance" {
			t.Fatalf("unexpected tags %+v", tags)
		}
	})
}
