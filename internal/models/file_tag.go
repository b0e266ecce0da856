package models

import "time"

// FileTag links a file to a tag and records who attached it and when.
// The (FileID, TagID) pair is the identity of the link.
type FileTag struct {
	FileID    uint      `json:"file_id" gorm:"primaryKey;autoIncrement:false"`
	TagID     uint      `json:"tag_id" gorm:"primaryKey;autoIncrement:false;index"`
	AddedBy   *uint     `json:"added_by" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`

	Tag         Tag   `json:"tag" gorm:"foreignKey:TagID"`
	AddedByUser *User `json:"-" gorm:"foreignKey:AddedBy"`
}

func (FileTag) TableName() string {
	return "file_tags"
}
