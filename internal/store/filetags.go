package store

import (
	"errors"
	"fmt"

	"github.com/datahub/backend/internal/models"
	"gorm.io/gorm/clause"
)

// TagEntry names a tag to link and, optionally, the user attaching it.
type TagEntry struct {
	Name    string
	AddedBy *uint
}

// TagLinkStore owns the file_tags association rows.
type TagLinkStore struct {
	registry *TagRegistry
}

func NewTagLinkStore(registry *TagRegistry) *TagLinkStore {
	return &TagLinkStore{registry: registry}
}

// Attach links fileID to tagID. An existing link for the pair is returned
// untouched, keeping its original added_by and created_at.
func (s *TagLinkStore) Attach(uow *UnitOfWork, fileID, tagID uint, addedBy *uint) (*models.FileTag, bool, error) {
	link := models.FileTag{
		FileID:  fileID,
		TagID:   tagID,
		AddedBy: addedBy,
	}

	result := uow.DB.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link)
	if result.Error != nil {
		return nil, false, fmt.Errorf("attach tag %d to file %d: %w", tagID, fileID, result.Error)
	}

	var stored models.FileTag
	if err := uow.DB.Preload("Tag").
		Where("file_id = ? AND tag_id = ?", fileID, tagID).
		First(&stored).Error; err != nil {
		return nil, false, err
	}

	return &stored, result.RowsAffected > 0, nil
}

// AttachEntries resolves and attaches each entry, skipping blank names.
func (s *TagLinkStore) AttachEntries(uow *UnitOfWork, fileID uint, entries []TagEntry) error {
	for _, entry := range entries {
		tag, err := s.registry.Resolve(uow, entry.Name)
		if errors.Is(err, ErrEmptyTagName) {
			continue
		}
		if err != nil {
			return err
		}
		if _, _, err := s.Attach(uow, fileID, tag.ID, entry.AddedBy); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceAll drops every link of fileID and rebuilds the set from entries.
func (s *TagLinkStore) ReplaceAll(uow *UnitOfWork, fileID uint, entries []TagEntry) ([]models.FileTag, error) {
	if err := s.DetachAll(uow, fileID); err != nil {
		return nil, err
	}
	if err := s.AttachEntries(uow, fileID, entries); err != nil {
		return nil, err
	}
	return s.ForFile(uow, fileID)
}

func (s *TagLinkStore) DetachAll(uow *UnitOfWork, fileID uint) error {
	return uow.DB.Where("file_id = ?", fileID).Delete(&models.FileTag{}).Error
}

// DetachFiles removes the links of every file in fileIDs.
func (s *TagLinkStore) DetachFiles(uow *UnitOfWork, fileIDs []uint) error {
	if len(fileIDs) == 0 {
		return nil
	}
	return uow.DB.Where("file_id IN ?", fileIDs).Delete(&models.FileTag{}).Error
}

// DetachTag removes every link to tagID across all files.
func (s *TagLinkStore) DetachTag(uow *UnitOfWork, tagID uint) (int64, error) {
	result := uow.DB.Where("tag_id = ?", tagID).Delete(&models.FileTag{})
	return result.RowsAffected, result.Error
}

func (s *TagLinkStore) ForFile(uow *UnitOfWork, fileID uint) ([]models.FileTag, error) {
	links := []models.FileTag{}
	err := uow.DB.Preload("Tag").
		Where("file_id = ?", fileID).
		Order("created_at ASC").
		Order("tag_id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// ClearAddedBy forgets userID as the author of any link.
func (s *TagLinkStore) ClearAddedBy(uow *UnitOfWork, userID uint) error {
	return uow.DB.Model(&models.FileTag{}).
		Where("added_by = ?", userID).
		Update("added_by", nil).Error
}
