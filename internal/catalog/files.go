package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/datahub/backend/internal/models"
	"github.com/datahub/backend/internal/storage"
	"github.com/datahub/backend/internal/store"
	"gorm.io/gorm/clause"
)

// CreateFile records a file, either from an upload or as metadata only, and
// attaches its initial tags. Stored content is removed again when the
// transaction fails.
func (s *Service) CreateFile(ctx context.Context, in CreateFileInput) (*FileView, error) {
	if in.UserID == 0 {
		return nil, invalid("user_id is required")
	}
	if in.Upload == nil && in.Filename == "" {
		return nil, invalid("filename or file upload is required")
	}

	entries := in.tagEntries()
	filename := in.Filename

	var obj *storage.Object
	if in.Upload != nil {
		if s.uploads == nil {
			return nil, &Error{Kind: ErrUploadsDisabled, Message: "file uploads are not configured"}
		}
		key := storage.ObjectKey(in.UserID, in.Upload.Filename)
		saved, err := s.uploads.Save(ctx, key, in.Upload.Reader, in.Upload.Size, in.Upload.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store upload: %w", err)
		}
		obj = saved
		if filename == "" {
			filename = storage.SanitizeFilename(in.Upload.Filename)
		}
	}

	var view FileView
	err := s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		if err := s.ensureUser(uow, in.UserID); err != nil {
			return err
		}
		if err := s.ensureTaggers(uow, entries); err != nil {
			return err
		}

		file := models.File{
			Filename:    filename,
			Description: in.Description,
			UserID:      in.UserID,
		}
		if obj != nil {
			if obj.URL != "" {
				file.SetRemoteURL(obj.URL)
			} else {
				file.SetLocalPath(obj.Path)
			}
		}
		if err := uow.DB.Omit(clause.Associations).Create(&file).Error; err != nil {
			return err
		}

		if err := s.links.AttachEntries(uow, file.ID, entries); err != nil {
			return err
		}

		loaded, err := s.loadFile(uow, file.ID)
		if err != nil {
			return err
		}
		view = newFileView(*loaded)
		return nil
	})
	if err != nil {
		if obj != nil && s.uploads != nil {
			if removeErr := s.uploads.Remove(ctx, obj); removeErr != nil {
				return nil, errors.Join(err, removeErr)
			}
		}
		return nil, err
	}
	return &view, nil
}

func (s *Service) GetFile(ctx context.Context, id uint) (*FileView, error) {
	var view FileView
	err := s.tx.Read(ctx, func(uow *store.UnitOfWork) error {
		file, err := s.loadFile(uow, id)
		if err != nil {
			return err
		}
		view = newFileView(*file)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListFiles returns every file, newest first.
func (s *Service) ListFiles(ctx context.Context) ([]FileView, error) {
	views := []FileView{}
	err := s.tx.Read(ctx, func(uow *store.UnitOfWork) error {
		var files []models.File
		err := uow.DB.
			Preload("TagLinks", preloadTagLinks).
			Preload("TagLinks.Tag").
			Order("created_at DESC").
			Order("id DESC").
			Find(&files).Error
		if err != nil {
			return err
		}
		for _, file := range files {
			views = append(views, newFileView(file))
		}
		return nil
	})
	return views, err
}

// UpdateFile applies only the keys present in patch. A metadata tag list
// replaces the links and wins over a plain tag list; with neither, links are
// left alone.
func (s *Service) UpdateFile(ctx context.Context, id uint, patch FilePatch) (*FileView, error) {
	if patch.Filename != nil && *patch.Filename == "" {
		return nil, invalid("filename cannot be empty")
	}

	var view FileView
	err := s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		file, err := s.loadFile(uow, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Filename != nil {
			updates["filename"] = *patch.Filename
		}
		if patch.HasDescription {
			updates["description"] = patch.Description
		}
		if len(updates) > 0 {
			if err := uow.DB.Model(&models.File{}).Where("id = ?", file.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		switch {
		case patch.HasTagsWithMeta:
			entries := metaEntries(patch.TagsWithMeta)
			if err := s.ensureTaggers(uow, entries); err != nil {
				return err
			}
			if _, err := s.links.ReplaceAll(uow, file.ID, entries); err != nil {
				return err
			}
		case patch.HasTags:
			if _, err := s.links.ReplaceAll(uow, file.ID, nameEntries(patch.Tags)); err != nil {
				return err
			}
		}

		loaded, err := s.loadFile(uow, file.ID)
		if err != nil {
			return err
		}
		view = newFileView(*loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// AttachTag links a single tag to a file. Attaching an existing pair returns
// the original link; created reports whether a new link was made.
func (s *Service) AttachTag(ctx context.Context, fileID uint, name string, addedBy *uint) (*TagLinkView, bool, error) {
	var (
		view    TagLinkView
		created bool
	)
	err := s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		if _, err := s.loadFile(uow, fileID); err != nil {
			return err
		}
		if err := s.ensureTaggers(uow, []store.TagEntry{{Name: name, AddedBy: addedBy}}); err != nil {
			return err
		}

		tag, err := s.tags.Resolve(uow, name)
		if errors.Is(err, store.ErrEmptyTagName) {
			return invalid("name is required")
		}
		if err != nil {
			return err
		}

		link, isNew, err := s.links.Attach(uow, fileID, tag.ID, addedBy)
		if err != nil {
			return err
		}
		view = newTagLinkView(*link)
		created = isNew
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &view, created, nil
}

// DeleteFile removes the file, its tag links and its collection memberships.
// Tags and collections themselves are kept.
func (s *Service) DeleteFile(ctx context.Context, id uint) (*FileView, error) {
	var file *models.File
	err := s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		var err error
		file, err = s.loadFile(uow, id)
		if err != nil {
			return err
		}
		if err := s.links.DetachAll(uow, id); err != nil {
			return err
		}
		if err := s.members.RemoveFile(uow, id); err != nil {
			return err
		}
		result := uow.DB.Delete(&models.File{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound("file not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.removeObject(ctx, file.Path, file.URL)
	view := newFileView(*file)
	return &view, nil
}
