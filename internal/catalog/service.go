package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/datahub/backend/internal/models"
	"github.com/datahub/backend/internal/storage"
	"github.com/datahub/backend/internal/store"
	"github.com/datahub/backend/pkg/logger"
	"gorm.io/gorm"
)

// Service is the only entry point the HTTP layer uses. Every mutating call
// runs in a single unit of work.
type Service struct {
	tx      *store.Transactor
	tags    *store.TagRegistry
	links   *store.TagLinkStore
	members *store.MembershipStore
	uploads storage.Backend
}

// NewService wires the stores around db. uploads may be nil, in which case
// binary uploads are rejected.
func NewService(db *gorm.DB, uploads storage.Backend) *Service {
	tags := store.NewTagRegistry()
	return &Service{
		tx:      store.NewTransactor(db),
		tags:    tags,
		links:   store.NewTagLinkStore(tags),
		members: store.NewMembershipStore(),
		uploads: uploads,
	}
}

func preloadTagLinks(db *gorm.DB) *gorm.DB {
	return db.Order("file_tags.created_at ASC").Order("file_tags.tag_id ASC")
}

func preloadByID(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id ASC")
	}
}

func (s *Service) loadFile(uow *store.UnitOfWork, id uint) (*models.File, error) {
	var file models.File
	err := uow.DB.
		Preload("TagLinks", preloadTagLinks).
		Preload("TagLinks.Tag").
		First(&file, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("file not found")
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *Service) loadCollection(uow *store.UnitOfWork, id uint) (*models.Collection, error) {
	var collection models.Collection
	err := uow.DB.Preload("Files", preloadByID("files")).First(&collection, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("collection not found")
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (s *Service) loadUser(uow *store.UnitOfWork, id uint) (*models.User, error) {
	var user models.User
	err := uow.DB.
		Preload("Files", preloadByID("files")).
		Preload("Collections", preloadByID("collections")).
		First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) ensureUser(uow *store.UnitOfWork, id uint) error {
	var count int64
	if err := uow.DB.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound("user not found")
	}
	return nil
}

// ensureTaggers rejects added_by values that do not name an existing user.
// Entries with a blank name are never attached and are not checked.
func (s *Service) ensureTaggers(uow *store.UnitOfWork, entries []store.TagEntry) error {
	seen := map[uint]struct{}{}
	ids := []uint{}
	for _, entry := range entries {
		if entry.AddedBy == nil || strings.TrimSpace(entry.Name) == "" {
			continue
		}
		if _, ok := seen[*entry.AddedBy]; ok {
			continue
		}
		seen[*entry.AddedBy] = struct{}{}
		ids = append(ids, *entry.AddedBy)
	}
	if len(ids) == 0 {
		return nil
	}

	var count int64
	if err := uow.DB.Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		return invalid("added_by references an unknown user")
	}
	return nil
}

// removeObject deletes stored content that no row references any more.
func (s *Service) removeObject(ctx context.Context, path, url *string) {
	if s.uploads == nil {
		return
	}
	obj, ok := s.uploads.Locate(path, url)
	if !ok {
		return
	}
	if err := s.uploads.Remove(ctx, obj); err != nil {
		logger.Warn("upload_cleanup_failed", map[string]interface{}{
			"object_name": obj.Key,
			"backend":     s.uploads.Name(),
			"error":       err.Error(),
		})
	}
}
