package catalog

import (
	"context"

	"github.com/datahub/backend/internal/models"
	"github.com/datahub/backend/internal/store"
	"gorm.io/gorm/clause"
)

func (s *Service) CreateCollection(ctx context.Context, in CreateCollectionInput) (*CollectionView, error) {
	if in.Name == "" || in.UserID == 0 {
		return nil, invalid("name and user_id are required")
	}

	var view CollectionView
	err := s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		if err := s.ensureUser(uow, in.UserID); err != nil {
			return err
		}

		collection := models.Collection{Name: in.Name, UserID: in.UserID}
		if err := uow.DB.Omit(clause.Associations).Create(&collection).Error; err != nil {
			return err
		}

		files, err := s.members.ExistingFiles(uow, in.FileIDs)
		if err != nil {
			return err
		}
		if err := s.members.AddMembers(uow, collection.ID, files); err != nil {
			return err
		}

		loaded, err := s.loadCollection(uow, collection.ID)
		if err != nil {
			return err
		}
		view = newCollectionView(*loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) GetCollection(ctx context.Context, id uint) (*CollectionView, error) {
	var view CollectionView
	err := s.tx.Read(ctx, func(uow *store.UnitOfWork) error {
		collection, err := s.loadCollection(uow, id)
		if err != nil {
			return err
		}
		view = newCollectionView(*collection)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListCollections returns every collection, newest first.
func (s *Service) ListCollections(ctx context.Context) ([]CollectionView, error) {
	views := []CollectionView{}
	err := s.tx.Read(ctx, func(uow *store.UnitOfWork) error {
		var collections []models.Collection
		err := uow.DB.
			Preload("Files", preloadByID("files")).
			Order("created_at DESC").
			Order("id DESC").
			Find(&collections).Error
		if err != nil {
			return err
		}
		for _, collection := range collections {
			views = append(views, newCollectionView(collection))
		}
		return nil
	})
	return views, err
}

// UpdateCollection renames and, when file ids are present, replaces the
// whole membership. An empty id list empties the collection.
func (s *Service) UpdateCollection(ctx context.Context, id uint, patch CollectionPatch) (*CollectionView, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, invalid("name cannot be empty")
	}

	var view CollectionView
	err := s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		collection, err := s.loadCollection(uow, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			if err := uow.DB.Model(&models.Collection{}).Where("id = ?", collection.ID).Update("name", *patch.Name).Error; err != nil {
				return err
			}
		}
		if patch.HasFileIDs {
			if _, err := s.members.SetMembers(uow, collection.ID, patch.FileIDs); err != nil {
				return err
			}
		}

		loaded, err := s.loadCollection(uow, collection.ID)
		if err != nil {
			return err
		}
		view = newCollectionView(*loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteCollection removes the collection and its membership rows only.
func (s *Service) DeleteCollection(ctx context.Context, id uint) error {
	return s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		if _, err := s.loadCollection(uow, id); err != nil {
			return err
		}
		if err := s.members.Clear(uow, id); err != nil {
			return err
		}
		return uow.DB.Delete(&models.Collection{}, id).Error
	})
}
