package store

import (
	"github.com/datahub/backend/internal/models"
	"gorm.io/gorm/clause"
)

// MembershipStore owns the collection_files set.
type MembershipStore struct{}

func NewMembershipStore() *MembershipStore {
	return &MembershipStore{}
}

// SetMembers replaces the membership of collectionID with the files among
// fileIDs that exist. Unknown ids are dropped.
func (s *MembershipStore) SetMembers(uow *UnitOfWork, collectionID uint, fileIDs []uint) ([]models.File, error) {
	files, err := s.existingFiles(uow, fileIDs)
	if err != nil {
		return nil, err
	}
	if err := s.Clear(uow, collectionID); err != nil {
		return nil, err
	}
	if err := s.AddMembers(uow, collectionID, files); err != nil {
		return nil, err
	}
	return files, nil
}

// AddMembers appends files to the collection.
func (s *MembershipStore) AddMembers(uow *UnitOfWork, collectionID uint, files []models.File) error {
	if len(files) == 0 {
		return nil
	}
	rows := make([]models.CollectionFile, 0, len(files))
	for _, file := range files {
		rows = append(rows, models.CollectionFile{CollectionID: collectionID, FileID: file.ID})
	}
	return uow.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// ExistingFiles loads the files among fileIDs that exist, ordered by id.
func (s *MembershipStore) ExistingFiles(uow *UnitOfWork, fileIDs []uint) ([]models.File, error) {
	return s.existingFiles(uow, fileIDs)
}

func (s *MembershipStore) existingFiles(uow *UnitOfWork, fileIDs []uint) ([]models.File, error) {
	files := []models.File{}
	if len(fileIDs) == 0 {
		return files, nil
	}
	if err := uow.DB.Where("id IN ?", fileIDs).Order("id ASC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// RemoveFile takes fileID out of every collection.
func (s *MembershipStore) RemoveFile(uow *UnitOfWork, fileID uint) error {
	return s.RemoveFiles(uow, []uint{fileID})
}

func (s *MembershipStore) RemoveFiles(uow *UnitOfWork, fileIDs []uint) error {
	if len(fileIDs) == 0 {
		return nil
	}
	return uow.DB.Where("file_id IN ?", fileIDs).Delete(&models.CollectionFile{}).Error
}

func (s *MembershipStore) Clear(uow *UnitOfWork, collectionID uint) error {
	return s.ClearCollections(uow, []uint{collectionID})
}

func (s *MembershipStore) ClearCollections(uow *UnitOfWork, collectionIDs []uint) error {
	if len(collectionIDs) == 0 {
		return nil
	}
	return uow.DB.Where("collection_id IN ?", collectionIDs).Delete(&models.CollectionFile{}).Error
}

func (s *MembershipStore) Members(uow *UnitOfWork, collectionID uint) ([]models.File, error) {
	files := []models.File{}
	err := uow.DB.
		Joins("JOIN collection_files ON collection_files.file_id = files.id").
		Where("collection_files.collection_id = ?", collectionID).
		Order("files.id ASC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}
