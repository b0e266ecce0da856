package catalog

import (
	"time"

	"github.com/datahub/backend/internal/models"
)

type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TagLinkView struct {
	FileID    uint      `json:"file_id"`
	TagID     uint      `json:"tag_id"`
	AddedBy   *uint     `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
	Tag       TagView   `json:"tag"`
}

type FileView struct {
	ID           uint          `json:"id"`
	Filename     string        `json:"filename"`
	Path         *string       `json:"path"`
	URL          *string       `json:"url"`
	Description  *string       `json:"description"`
	UserID       uint          `json:"user_id"`
	CreatedAt    time.Time     `json:"created_at"`
	Tags         []TagView     `json:"tags"`
	TagsWithMeta []TagLinkView `json:"tags_with_meta"`
}

type FileRef struct {
	ID       uint   `json:"id"`
	Filename string `json:"filename"`
}

type CollectionRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CollectionView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Files     []FileRef `json:"files"`
}

// UserView never exposes the password hash.
type UserView struct {
	ID          uint            `json:"id"`
	Username    string          `json:"username"`
	CreatedAt   time.Time       `json:"created_at"`
	Files       []FileRef       `json:"files"`
	Collections []CollectionRef `json:"collections"`
}

func newTagView(tag models.Tag) TagView {
	return TagView{ID: tag.ID, Name: tag.Name}
}

func newTagLinkView(link models.FileTag) TagLinkView {
	return TagLinkView{
		FileID:    link.FileID,
		TagID:     link.TagID,
		AddedBy:   link.AddedBy,
		CreatedAt: link.CreatedAt,
		Tag:       newTagView(link.Tag),
	}
}

func newFileView(file models.File) FileView {
	view := FileView{
		ID:           file.ID,
		Filename:     file.Filename,
		Path:         file.Path,
		URL:          file.URL,
		Description:  file.Description,
		UserID:       file.UserID,
		CreatedAt:    file.CreatedAt,
		Tags:         make([]TagView, 0, len(file.TagLinks)),
		TagsWithMeta: make([]TagLinkView, 0, len(file.TagLinks)),
	}
	for _, tag := range file.Tags() {
		view.Tags = append(view.Tags, newTagView(tag))
	}
	for _, link := range file.TagLinks {
		view.TagsWithMeta = append(view.TagsWithMeta, newTagLinkView(link))
	}
	return view
}

func newFileRefs(files []models.File) []FileRef {
	refs := make([]FileRef, 0, len(files))
	for _, file := range files {
		refs = append(refs, FileRef{ID: file.ID, Filename: file.Filename})
	}
	return refs
}

func newCollectionView(collection models.Collection) CollectionView {
	return CollectionView{
		ID:        collection.ID,
		Name:      collection.Name,
		UserID:    collection.UserID,
		CreatedAt: collection.CreatedAt,
		Files:     newFileRefs(collection.Files),
	}
}

func newUserView(user models.User) UserView {
	view := UserView{
		ID:          user.ID,
		Username:    user.Username,
		CreatedAt:   user.CreatedAt,
		Files:       newFileRefs(user.Files),
		Collections: make([]CollectionRef, 0, len(user.Collections)),
	}
	for _, collection := range user.Collections {
		view.Collections = append(view.Collections, CollectionRef{ID: collection.ID, Name: collection.Name})
	}
	return view
}
