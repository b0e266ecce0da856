package catalog

import (
	"context"
	"errors"

	"github.com/datahub/backend/internal/store"
	"gorm.io/gorm"
)

// ResolveTag returns the tag with the trimmed name, creating it if needed.
// created reports whether this call inserted the row.
func (s *Service) ResolveTag(ctx context.Context, name string) (*TagView, bool, error) {
	var (
		view    TagView
		created bool
	)
	err := s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		tag, isNew, err := s.tags.GetOrCreate(uow, name)
		if errors.Is(err, store.ErrEmptyTagName) {
			return invalid("name is required")
		}
		if err != nil {
			return err
		}
		view = newTagView(*tag)
		created = isNew
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &view, created, nil
}

func (s *Service) ListTags(ctx context.Context) ([]TagView, error) {
	views := []TagView{}
	err := s.tx.Read(ctx, func(uow *store.UnitOfWork) error {
		tags, err := s.tags.List(uow)
		if err != nil {
			return err
		}
		for _, tag := range tags {
			views = append(views, newTagView(tag))
		}
		return nil
	})
	return views, err
}

// DeleteTag removes a tag and every link to it, across all files.
func (s *Service) DeleteTag(ctx context.Context, id uint) error {
	return s.tx.Execute(ctx, func(uow *store.UnitOfWork) error {
		if _, err := s.tags.Get(uow, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("tag not found")
			}
			return err
		}
		if _, err := s.links.DetachTag(uow, id); err != nil {
			return err
		}
		return s.tags.Delete(uow, id)
	})
}
