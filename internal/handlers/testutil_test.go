package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/datahub/backend/internal/catalog"
	"github.com/datahub/backend/internal/config"
	"github.com/datahub/backend/internal/database"
	"github.com/datahub/backend/internal/middleware"
	"github.com/datahub/backend/internal/models"
	"github.com/datahub/backend/internal/storage"
	"github.com/datahub/backend/pkg/logger"
	"github.com/datahub/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	uploads *storage.LocalStore
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := database.Connect(config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})

	uploads, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed creating upload store: %v", err)
	}

	svc := catalog.NewService(db, uploads)
	app := NewApp(svc, middleware.NewAuthMiddleware(db), AppOptions{
		FrontendURL: "http://localhost:5173",
		BodyLimitMB: 10,
	})

	return &testEnv{app: app, db: db, uploads: uploads}
}

func createTestUser(t *testing.T, db *gorm.DB, username, password string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func createTestFile(t *testing.T, env *testEnv, userID uint, filename string, tags ...string) uint {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/files", map[string]any{
		"user_id":  userID,
		"filename": filename,
		"tags":     tags,
	}, nil)
	assertStatus(t, resp, http.StatusCreated)
	return jsonID(t, decodeJSONMap(t, resp))
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func performRawJSONRequest(t *testing.T, app *fiber.App, method, path, payload string) *http.Response {
	t.Helper()
	return performRequest(t, app, method, path, bytes.NewBufferString(payload), map[string]string{
		"Content-Type": "application/json",
	})
}

func performMultipartRequest(t *testing.T, app *fiber.App, path string, fields map[string]string, filename string, content []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed writing field %s: %v", key, err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("failed creating form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("failed writing form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}

	return performRequest(t, app, http.MethodPost, path, &body, map[string]string{
		"Content-Type": writer.FormDataContentType(),
	})
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	return raw
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw := readBody(t, resp)
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func decodeJSONList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()

	raw := readBody(t, resp)
	var payload []map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON list response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d body=%q", expected, resp.StatusCode, string(raw))
	}
}

func assertError(t *testing.T, resp *http.Response, status int, expected string) {
	t.Helper()
	assertStatus(t, resp, status)
	body := decodeJSONMap(t, resp)
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

func jsonID(t *testing.T, body map[string]any) uint {
	t.Helper()
	id, ok := body["id"].(float64)
	if !ok {
		t.Fatalf("missing id in %+v", body)
	}
	return uint(id)
}

func tagNamesOf(t *testing.T, file map[string]any) []string {
	t.Helper()
	tags, ok := file["tags"].([]any)
	if !ok {
		t.Fatalf("missing tags in %+v", file)
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.(map[string]any)["name"].(string))
	}
	return names
}

func fileIDsOf(t *testing.T, collection map[string]any) []uint {
	t.Helper()
	files, ok := collection["files"].([]any)
	if !ok {
		t.Fatalf("missing files in %+v", collection)
	}
	ids := make([]uint, 0, len(files))
	for _, file := range files {
		ids = append(ids, uint(file.(map[string]any)["id"].(float64)))
	}
	return ids
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
