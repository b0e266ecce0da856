package catalog

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/datahub/backend/internal/models"
	"github.com/datahub/backend/internal/storage"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, models.Migrate(db))
	return db
}

type fakeBackend struct {
	mu      sync.Mutex
	saved   map[string][]byte
	removed []string
	failOn  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{saved: map[string][]byte{}}
}

func (f *fakeBackend) Name() string {
	return "fake"
}

func (f *fakeBackend) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.Object, error) {
	if f.failOn != nil {
		return nil, f.failOn
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[key] = data
	return &storage.Object{Key: key, Path: "/uploads/" + key}, nil
}

func (f *fakeBackend) Remove(ctx context.Context, obj *storage.Object) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.saved[obj.Key]; !ok {
		return errors.New("missing object")
	}
	delete(f.saved, obj.Key)
	f.removed = append(f.removed, obj.Key)
	return nil
}

func (f *fakeBackend) Locate(path, url *string) (*storage.Object, bool) {
	if path == nil || len(*path) <= len("/uploads/") {
		return nil, false
	}
	return &storage.Object{Key: (*path)[len("/uploads/"):], Path: *path}, true
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	uploads *fakeBackend
	ctx     context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	uploads := newFakeBackend()
	return &fixture{
		db:      db,
		svc:     NewService(db, uploads),
		uploads: uploads,
		ctx:     context.Background(),
	}
}

func (f *fixture) user(t *testing.T, username string) *UserView {
	t.Helper()

	user, err := f.svc.Register(f.ctx, username, "password")
	require.NoError(t, err)
	return user
}

func (f *fixture) file(t *testing.T, owner uint, filename string, tags ...string) *FileView {
	t.Helper()

	file, err := f.svc.CreateFile(f.ctx, CreateFileInput{UserID: owner, Filename: filename, Tags: tags})
	require.NoError(t, err)
	return file
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	tx := f.db.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	require.NoError(t, tx.Count(&count).Error)
	return count
}

func viewTagNames(view *FileView) []string {
	names := make([]string, 0, len(view.Tags))
	for _, tag := range view.Tags {
		names = append(names, tag.Name)
	}
	return names
}

func refIDs(refs []FileRef) []uint {
	ids := make([]uint, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}

func strPtr(v string) *string {
	return &v
}

func uintPtr(v uint) *uint {
	return &v
}
