package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/datahub/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":            "report.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\cv v2.doc`: "cv_v2.doc",
		"my file (1).txt":       "my_file_1.txt",
		".hidden":               "hidden",
		"":                      "upload",
		"///":                   "upload",
	}
	for input, want := range cases {
		assert.Equal(t, want, SanitizeFilename(input), "input %q", input)
	}
}

func TestObjectKey(t *testing.T) {
	first := ObjectKey(3, "q3 report.pdf")
	second := ObjectKey(3, "q3 report.pdf")

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "3/"))
	assert.True(t, strings.HasSuffix(first, "/q3_report.pdf"))
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Save writes under the root and reports a path", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir())
		require.NoError(t, err)

		obj, err := store.Save(ctx, "1/abc/notes.txt", strings.NewReader("hello"), 5, "text/plain")
		require.NoError(t, err)
		assert.Empty(t, obj.URL)
		assert.Equal(t, filepath.Join(store.Root(), "1", "abc", "notes.txt"), obj.Path)

		content, err := os.ReadFile(obj.Path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(content))
	})

	t.Run("Save refuses keys escaping the root", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.Save(ctx, "../outside.txt", strings.NewReader("x"), 1, "text/plain")
		require.Error(t, err)
	})

	t.Run("Save does not overwrite an existing object", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.Save(ctx, "a.txt", strings.NewReader("one"), 3, "text/plain")
		require.NoError(t, err)
		_, err = store.Save(ctx, "a.txt", strings.NewReader("two"), 3, "text/plain")
		require.Error(t, err)
	})

	t.Run("Locate and Remove round trip", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir())
		require.NoError(t, err)

		obj, err := store.Save(ctx, "2/k/file.bin", strings.NewReader("data"), 4, "")
		require.NoError(t, err)

		located, ok := store.Locate(&obj.Path, nil)
		require.True(t, ok)
		assert.Equal(t, "2/k/file.bin", located.Key)

		require.NoError(t, store.Remove(ctx, located))
		_, statErr := os.Stat(obj.Path)
		assert.True(t, os.IsNotExist(statErr))

		require.NoError(t, store.Remove(ctx, located), "removing twice is not an error")
	})

	t.Run("Locate ignores foreign locators", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir())
		require.NoError(t, err)

		outside := filepath.Join(os.TempDir(), "elsewhere.txt")
		_, ok := store.Locate(&outside, nil)
		assert.False(t, ok)

		url := "http://minio/bucket/x"
		_, ok = store.Locate(nil, &url)
		assert.False(t, ok)
	})
}

func TestMinIOLocate(t *testing.T) {
	client, err := NewMinIOClient(config.MinIOConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "datahub",
	})
	require.NoError(t, err)

	url := "http://localhost:9000/datahub/1/abc/a.txt"
	obj, ok := client.Locate(nil, &url)
	require.True(t, ok)
	assert.Equal(t, "1/abc/a.txt", obj.Key)

	other := "http://elsewhere/datahub/1/abc/a.txt"
	_, ok = client.Locate(nil, &other)
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.UploadDir = t.TempDir()

	backend, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "local", backend.Name())

	cfg.Storage.Backend = "ftp"
	_, err = New(context.Background(), cfg)
	require.Error(t, err)
}
