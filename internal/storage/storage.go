package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/datahub/backend/internal/config"
	"github.com/google/uuid"
)

// Object is a stored upload. Exactly one of Path or URL is set, depending on
// the backend that wrote it.
type Object struct {
	Key  string
	Path string
	URL  string
}

// Backend persists uploaded file content.
type Backend interface {
	Name() string
	Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Object, error)
	Remove(ctx context.Context, obj *Object) error
	// Locate maps a stored locator back to an object of this backend.
	Locate(path, url *string) (*Object, bool)
}

// New builds the backend selected by cfg.Storage.Backend.
func New(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Backend {
	case "", config.StorageLocal:
		return NewLocalStore(cfg.Storage.UploadDir)
	case config.StorageMinIO:
		client, err := NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("minio initialization failed: %w", err)
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed ensuring minio bucket: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces a client supplied name to a safe base name.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

// ObjectKey returns a collision free key for an upload owned by userID.
func ObjectKey(userID uint, filename string) string {
	return fmt.Sprintf("%d/%s/%s", userID, uuid.New().String(), SanitizeFilename(filename))
}
