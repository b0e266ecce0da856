package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/datahub/backend/internal/config"
	"github.com/datahub/backend/internal/models"
	"github.com/datahub/backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func connectTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Connect(config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "nested", "app.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = Close(db)
	})
	return db
}

func TestConnect(t *testing.T) {
	t.Run("creates the sqlite file and schema", func(t *testing.T) {
		db := connectTestDB(t)

		for _, table := range []string{"users", "files", "tags", "file_tags", "collections", "collection_files"} {
			assert.True(t, db.Migrator().HasTable(table), table)
		}
	})

	t.Run("enforces foreign keys", func(t *testing.T) {
		db := connectTestDB(t)

		err := db.Create(&models.FileTag{FileID: 1, TagID: 1}).Error
		require.Error(t, err)
	})

	t.Run("rejects unknown drivers", func(t *testing.T) {
		_, err := Open(config.DBConfig{Driver: "oracle"})
		require.Error(t, err)
	})
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", SQLiteDSN("app.db"))
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=n sslmode=disable",
		PostgresDSN(config.DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}),
	)
}

func TestSeed(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()

	first, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Users: 3, Tags: 4, Files: 3, Collections: 3}, first)

	second, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{}, second)

	var alice models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&alice).Error)
	assert.True(t, utils.CheckPassword("password", alice.PasswordHash))

	var report models.File
	require.NoError(t, db.Preload("TagLinks.Tag").Where("filename = ?", "q3_report.pdf").First(&report).Error)
	require.Len(t, report.TagLinks, 2)
	for _, link := range report.TagLinks {
		require.NotNil(t, link.AddedBy)
		assert.Equal(t, alice.ID, *link.AddedBy)
	}

	var room models.Collection
	require.NoError(t, db.Preload("Files").Where("name = ?", "Data Room").First(&room).Error)
	assert.Len(t, room.Files, 2)

	var linkCount int64
	require.NoError(t, db.Model(&models.FileTag{}).Count(&linkCount).Error)
	assert.Equal(t, int64(5), linkCount)
}
