package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-blog/internal/domain"
)

// GormGroupRepository implements GroupRepository using GORM.
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GORM-backed group repository.
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

func (r *GormGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	model := domain.GroupModel{
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	group.ID = model.ID
	return nil
}

func (r *GormGroupRepository) GetBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	var model domain.GroupModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return modelToGroup(&model), nil
}

func (r *GormGroupRepository) GetByID(ctx context.Context, id uint) (*domain.Group, error) {
	var model domain.GroupModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return modelToGroup(&model), nil
}

// List returns all groups ordered by title.
func (r *GormGroupRepository) List(ctx context.Context) ([]domain.Group, error) {
	var models []domain.GroupModel
	if err := r.db.WithContext(ctx).Order("title ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	groups := make([]domain.Group, 0, len(models))
	for i := range models {
		groups = append(groups, *modelToGroup(&models[i]))
	}
	return groups, nil
}

// Delete removes the group unless a post still references it.
func (r *GormGroupRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&domain.PostModel{}).Where("group_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrGroupHasPosts
		}

		result := tx.Delete(&domain.GroupModel{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrGroupNotFound
		}
		return nil
	})
}

func modelToGroup(m *domain.GroupModel) *domain.Group {
	return &domain.Group{
		ID:          m.ID,
		Title:       m.Title,
		Slug:        m.Slug,
		Description: m.Description,
	}
}

var _ GroupRepository = (*GormGroupRepository)(nil)
