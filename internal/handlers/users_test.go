package handlers

import (
	"net/http"
	"testing"

	"github.com/datahub/backend/internal/models"
)

func TestUsersEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	alice, _ := createTestUser(t, env.db, "alice", "password")
	bob, _ := createTestUser(t, env.db, "bob", "password")

	aliceFile := createTestFile(t, env, alice.ID, "alice.txt", "shared")
	bobFile := createTestFile(t, env, bob.ID, "bob.txt")

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/collections", map[string]any{
		"name":     "Alice picks",
		"user_id":  alice.ID,
		"file_ids": []uint{aliceFile, bobFile},
	}, nil)
	assertStatus(t, resp, http.StatusCreated)

	resp = performJSONRequest(t, env.app, http.MethodPost, path("/api/files/%d/tags", bobFile), map[string]any{
		"name":     "seen-by-alice",
		"added_by": alice.ID,
	}, nil)
	assertStatus(t, resp, http.StatusCreated)

	t.Run("GET /api/users oldest first", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/users", nil, nil)
		assertStatus(t, resp, http.StatusOK)
		users := decodeJSONList(t, resp)
		if len(users) != 2 || users[0]["username"] != "alice" || users[1]["username"] != "bob" {
			t.Fatalf("unexpected users %+v", users)
		}
	})

	t.Run("GET /api/users/:id includes projections", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, path("/api/users/%d", alice.ID), nil, nil)
		assertStatus(t, resp, http.StatusOK)
		user := decodeJSONMap(t, resp)
		if ids := fileIDsOf(t, user); len(ids) != 1 || ids[0] != aliceFile {
			t.Fatalf("unexpected files %v", ids)
		}
		collections := user["collections"].([]any)
		if len(collections) != 1 || collections[0].(map[string]any)["name"] != "Alice picks" {
			t.Fatalf("unexpected collections %+v", collections)
		}
		if _, leaked := user["password_hash"]; leaked {
			t.Fatal("password hash must not be serialized")
		}
	})

	t.Run("GET /api/users/:id unknown", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/users/9999", nil, nil)
		assertError(t, resp, http.StatusNotFound, "user not found")
	})

	t.Run("GET /api/users/:id malformed", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/users/0", nil, nil)
		assertError(t, resp, http.StatusBadRequest, "invalid user id")
	})

	t.Run("DELETE /api/users/:id cascades", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, path("/api/users/%d", alice.ID), nil, nil)
		assertStatus(t, resp, http.StatusNoContent)

		var files, collections, members int64
		env.db.Model(&models.File{}).Count(&files)
		env.db.Model(&models.Collection{}).Count(&collections)
		env.db.Model(&models.CollectionFile{}).Count(&members)
		if files != 1 || collections != 0 || members != 0 {
			t.Fatalf("unexpected leftovers files=%d collections=%d members=%d", files, collections, members)
		}

		resp = performRequest(t, env.app, http.MethodGet, path("/api/files/%d", bobFile), nil, nil)
		assertStatus(t, resp, http.StatusOK)
		file := decodeJSONMap(t, resp)
		link := file["tags_with_meta"].([]any)[0].(map[string]any)
		if link["added_by"] != nil {
			t.Fatalf("provenance of deleted user must be cleared, got %v", link["added_by"])
		}
	})

	t.Run("DELETE /api/users/:id unknown", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/users/9999", nil, nil)
		assertError(t, resp, http.StatusNotFound, "user not found")
	})
}
