package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/datahub/backend/pkg/logger"
)

// LocalStore keeps uploads under a directory on disk.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating upload directory %s: %w", abs, err)
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) Name() string {
	return "local"
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Object, error) {
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, err
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	written, err := io.Copy(out, reader)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		logger.Error("local_upload_failed", err, map[string]interface{}{
			"object_name": key,
			"size":        size,
		})
		return nil, err
	}

	logger.Info("local_upload_success", map[string]interface{}{
		"object_name":  key,
		"size":         written,
		"content_type": contentType,
	})
	return &Object{Key: key, Path: target}, nil
}

func (s *LocalStore) Remove(ctx context.Context, obj *Object) error {
	if obj == nil || obj.Path == "" {
		return nil
	}
	if _, ok := s.Locate(&obj.Path, nil); !ok {
		return fmt.Errorf("path %s is outside the upload directory", obj.Path)
	}
	err := os.Remove(obj.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStore) Locate(path, url *string) (*Object, bool) {
	if path == nil || *path == "" {
		return nil, false
	}
	rel, err := filepath.Rel(s.root, filepath.Clean(*path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil, false
	}
	return &Object{Key: filepath.ToSlash(rel), Path: *path}, true
}

func (s *LocalStore) resolve(key string) (string, error) {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return target, nil
}
