package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/datahub/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEmptyTagName = errors.New("tag name is required")

// TagRegistry owns tag identity by unique name.
type TagRegistry struct{}

func NewTagRegistry() *TagRegistry {
	return &TagRegistry{}
}

func NormalizeTagName(name string) string {
	return strings.TrimSpace(name)
}

// Resolve returns the tag named name, creating it when absent.
func (r *TagRegistry) Resolve(uow *UnitOfWork, name string) (*models.Tag, error) {
	tag, _, err := r.GetOrCreate(uow, name)
	return tag, err
}

// GetOrCreate is Resolve that also reports whether this call created the row.
func (r *TagRegistry) GetOrCreate(uow *UnitOfWork, name string) (*models.Tag, bool, error) {
	name = NormalizeTagName(name)
	if name == "" {
		return nil, false, ErrEmptyTagName
	}

	tag, err := r.Find(uow, name)
	if err == nil {
		return tag, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	return r.insert(uow, name)
}

// insert adds the tag, yielding to a row committed concurrently under the
// same name.
func (r *TagRegistry) insert(uow *UnitOfWork, name string) (*models.Tag, bool, error) {
	tag := models.Tag{Name: name}
	result := uow.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag)
	if result.Error != nil {
		return nil, false, fmt.Errorf("insert tag %q: %w", name, result.Error)
	}
	if result.RowsAffected > 0 {
		return &tag, true, nil
	}

	winner, err := r.Find(uow, name)
	if err != nil {
		return nil, false, fmt.Errorf("reload tag %q after conflict: %w", name, err)
	}
	return winner, false, nil
}

// Find looks a tag up by exact trimmed name. It returns gorm.ErrRecordNotFound
// when no such tag exists.
func (r *TagRegistry) Find(uow *UnitOfWork, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := uow.DB.Where("name = ?", NormalizeTagName(name)).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRegistry) Get(uow *UnitOfWork, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := uow.DB.First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRegistry) List(uow *UnitOfWork) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := uow.DB.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Delete removes the tag row. Links referencing it must already be gone.
func (r *TagRegistry) Delete(uow *UnitOfWork, id uint) error {
	result := uow.DB.Delete(&models.Tag{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
