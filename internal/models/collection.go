package models

import (
	"time"

	"gorm.io/gorm"
)

type Collection struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(120);not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`

	User  User   `json:"-" gorm:"foreignKey:UserID"`
	Files []File `json:"files" gorm:"many2many:collection_files"`
}

// CollectionFile is a row of the collection_files join table.
type CollectionFile struct {
	CollectionID uint `gorm:"primaryKey;autoIncrement:false"`
	FileID       uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (CollectionFile) TableName() string {
	return "collection_files"
}

// Migrate creates or updates every table, registering CollectionFile as the
// join model of Collection.Files.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Collection{}, "Files", &CollectionFile{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&User{},
		&Tag{},
		&File{},
		&FileTag{},
		&Collection{},
		&CollectionFile{},
	)
}
