package catalog

import (
	"context"
	"errors"

	"github.com/datahub/backend/internal/models"
	"github.com/datahub/backend/internal/store"
	"github.com/datahub/backend/pkg/logger"
	"github.com/datahub/backend/pkg/utils"
	"gorm.io/gorm"
)

func (s *Service) Register(ctx context.Context, username, password string) (*UserView, error) {
	if username == "" || password == "" {
		return nil, invalid("username and password required")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{Username: username, PasswordHash: hash}
	err = s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		var count int64
		if err := uow.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("username already exists")
		}
		if err := uow.DB.Omit("Files", "Collections").Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict("username already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := newUserView(user)
	return &view, nil
}

// Login matches the exact username and verifies the password against its
// stored hash.
func (s *Service) Login(ctx context.Context, username, password string) (*UserView, error) {
	var view *UserView
	err := s.tx.Read(ctx, func(uow *store.UnitOfWork) error {
		var user models.User
		err := uow.DB.Where("username = ?", username).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Error{Kind: ErrInvalidCredentials, Message: "invalid credentials"}
		}
		if err != nil {
			return err
		}
		if !utils.CheckPassword(password, user.PasswordHash) {
			return &Error{Kind: ErrInvalidCredentials, Message: "invalid credentials"}
		}

		loaded, err := s.loadUser(uow, user.ID)
		if err != nil {
			return err
		}
		v := newUserView(*loaded)
		view = &v
		return nil
	})
	return view, err
}

func (s *Service) ListUsers(ctx context.Context) ([]UserView, error) {
	views := []UserView{}
	err := s.tx.Read(ctx, func(uow *store.UnitOfWork) error {
		var users []models.User
		err := uow.DB.
			Preload("Files", preloadByID("files")).
			Preload("Collections", preloadByID("collections")).
			Order("created_at ASC").
			Order("id ASC").
			Find(&users).Error
		if err != nil {
			return err
		}
		for _, user := range users {
			views = append(views, newUserView(user))
		}
		return nil
	})
	return views, err
}

func (s *Service) GetUser(ctx context.Context, id uint) (*UserView, error) {
	var view *UserView
	err := s.tx.Read(ctx, func(uow *store.UnitOfWork) error {
		user, err := s.loadUser(uow, id)
		if err != nil {
			return err
		}
		v := newUserView(*user)
		view = &v
		return nil
	})
	return view, err
}

// DeleteUser removes the user together with everything they own. Links the
// user attached to other users' files survive without provenance.
func (s *Service) DeleteUser(ctx context.Context, id uint) error {
	var files []models.File
	err := s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		if err := s.ensureUser(uow, id); err != nil {
			return err
		}

		if err := uow.DB.Where("user_id = ?", id).Find(&files).Error; err != nil {
			return err
		}
		fileIDs := make([]uint, 0, len(files))
		for _, file := range files {
			fileIDs = append(fileIDs, file.ID)
		}

		if err := s.members.RemoveFiles(uow, fileIDs); err != nil {
			return err
		}
		if err := s.links.DetachFiles(uow, fileIDs); err != nil {
			return err
		}
		if err := uow.DB.Where("user_id = ?", id).Delete(&models.File{}).Error; err != nil {
			return err
		}

		var collectionIDs []uint
		if err := uow.DB.Model(&models.Collection{}).Where("user_id = ?", id).Pluck("id", &collectionIDs).Error; err != nil {
			return err
		}
		if err := s.members.ClearCollections(uow, collectionIDs); err != nil {
			return err
		}
		if err := uow.DB.Where("user_id = ?", id).Delete(&models.Collection{}).Error; err != nil {
			return err
		}

		if err := s.links.ClearAddedBy(uow, id); err != nil {
			return err
		}
		return uow.DB.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return err
	}

	for _, file := range files {
		s.removeObject(ctx, file.Path, file.URL)
	}
	logger.Info("user_deleted", map[string]interface{}{
		"user_id":       id,
		"deleted_files": len(files),
	})
	return nil
}
