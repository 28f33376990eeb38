package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/wes-io-blog/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-backed user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Ensure upserts the identity, keeping the username current.
func (r *GormUserRepository) Ensure(ctx context.Context, id, username string) error {
	model := domain.UserModel{ID: id, Username: username}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username"}),
		}).
		Create(&model).Error
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return modelToUser(&model), nil
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return modelToUser(&model), nil
}

func modelToUser(m *domain.UserModel) *domain.User {
	return &domain.User{
		ID:        m.ID,
		Username:  m.Username,
		CreatedAt: m.CreatedAt,
	}
}

var _ UserRepository = (*GormUserRepository)(nil)
