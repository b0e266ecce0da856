package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/datahub/backend/internal/config"
	"github.com/datahub/backend/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient stores uploads in an S3 compatible bucket and records the
// object URL as the file locator.
type MinIOClient struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinIOClient(cfg config.MinIOConfig) (*MinIOClient, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey == "" {
		creds = credentials.NewIAM("")
	} else {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &MinIOClient{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: objectBaseURL(cfg),
	}, nil
}

func objectBaseURL(cfg config.MinIOConfig) string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpoint := cfg.PublicEndpoint
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, strings.TrimSuffix(endpoint, "/"), cfg.Bucket)
}

func (m *MinIOClient) Name() string {
	return "minio"
}

func (m *MinIOClient) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Object, error) {
	_, err := m.client.PutObject(ctx, m.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("minio_upload_failed", err, map[string]interface{}{
			"object_name":  key,
			"size":         size,
			"content_type": contentType,
			"bucket":       m.bucket,
		})
		return nil, err
	}

	logger.Info("minio_upload_success", map[string]interface{}{
		"object_name":  key,
		"size":         size,
		"content_type": contentType,
		"bucket":       m.bucket,
	})
	return &Object{Key: key, URL: m.baseURL + key}, nil
}

func (m *MinIOClient) Remove(ctx context.Context, obj *Object) error {
	if obj == nil || obj.Key == "" {
		return nil
	}
	err := m.client.RemoveObject(ctx, m.bucket, obj.Key, minio.RemoveObjectOptions{})
	if err != nil {
		logger.Error("minio_delete_failed", err, map[string]interface{}{
			"object_name": obj.Key,
			"bucket":      m.bucket,
		})
	} else {
		logger.Info("minio_delete_success", map[string]interface{}{
			"object_name": obj.Key,
			"bucket":      m.bucket,
		})
	}
	return err
}

func (m *MinIOClient) Locate(path, url *string) (*Object, bool) {
	if url == nil || !strings.HasPrefix(*url, m.baseURL) {
		return nil, false
	}
	key := strings.TrimPrefix(*url, m.baseURL)
	if key == "" {
		return nil, false
	}
	return &Object{Key: key, URL: *url}, true
}

func (m *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: ""}); err != nil {
		return fmt.Errorf("failed creating bucket %s: %w", m.bucket, err)
	}
	return nil
}
