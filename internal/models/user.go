package models

import "time"

type User struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Username     string       `json:"username" gorm:"type:varchar(80);uniqueIndex;not null"`
	PasswordHash string       `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time    `json:"created_at"`
	Files        []File       `json:"-" gorm:"foreignKey:UserID"`
	Collections  []Collection `json:"-" gorm:"foreignKey:UserID"`
}
