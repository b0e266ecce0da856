package models

import "time"

type File struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Filename    string    `json:"filename" gorm:"type:varchar(255);not null"`
	Path        *string   `json:"path" gorm:"type:varchar(512)"`
	URL         *string   `json:"url" gorm:"column:url;type:varchar(512)"`
	Description *string   `json:"description" gorm:"type:text"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	User     User      `json:"-" gorm:"foreignKey:UserID"`
	TagLinks []FileTag `json:"-" gorm:"foreignKey:FileID"`
}

// Tags returns the tags reachable through the loaded links, in link order.
func (f *File) Tags() []Tag {
	tags := make([]Tag, 0, len(f.TagLinks))
	for _, link := range f.TagLinks {
		tags = append(tags, link.Tag)
	}
	return tags
}

// SetLocalPath records an on-disk locator and clears any remote one.
func (f *File) SetLocalPath(path string) {
	f.Path = &path
	f.URL = nil
}

// SetRemoteURL records an object-storage locator and clears any local one.
func (f *File) SetRemoteURL(url string) {
	f.URL = &url
	f.Path = nil
}

func (f *File) HasUpload() bool {
	return f.Path != nil || f.URL != nil
}
