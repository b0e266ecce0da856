package store

import (
	"context"
	"testing"

	"github.com/datahub/backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createFile(t *testing.T, db *gorm.DB, owner models.User, filename string) models.File {
	t.Helper()

	file := models.File{Filename: filename, UserID: owner.ID}
	require.NoError(t, db.Omit("User").Create(&file).Error)
	return file
}

func createCollection(t *testing.T, db *gorm.DB, owner models.User, name string) models.Collection {
	t.Helper()

	collection := models.Collection{Name: name, UserID: owner.ID}
	require.NoError(t, db.Omit("User", "Files").Create(&collection).Error)
	return collection
}

func execute(t *testing.T, db *gorm.DB, fn func(uow *UnitOfWork) error) {
	t.Helper()
	require.NoError(t, NewTransactor(db).Execute(context.Background(), fn))
}

func tagNames(links []models.FileTag) []string {
	names := make([]string, 0, len(links))
	for _, link := range links {
		names = append(names, link.Tag.Name)
	}
	return names
}

func uintPtr(v uint) *uint {
	return &v
}
