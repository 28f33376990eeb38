package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/wes-io-blog/internal/domain"
)

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-backed follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Follow inserts the (user, author) pair, ignoring an existing one.
func (r *GormFollowRepository) Follow(ctx context.Context, userID, authorID string) (bool, error) {
	model := domain.FollowModel{
		UserID:   userID,
		AuthorID: authorID,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Unfollow hard-deletes the pair if present.
func (r *GormFollowRepository) Unfollow(ctx context.Context, userID, authorID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&domain.FollowModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsFollowing checks if userID follows authorID.
func (r *GormFollowRepository) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowedAuthors returns the distinct author ids userID follows.
func (r *GormFollowRepository) FollowedAuthors(ctx context.Context, userID string) ([]string, error) {
	var authorIDs []string
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Distinct("author_id").
		Where("user_id = ?", userID).
		Pluck("author_id", &authorIDs).Error
	if err != nil {
		return nil, err
	}
	return authorIDs, nil
}

// GetFollowersCount returns how many users follow authorID.
func (r *GormFollowRepository) GetFollowersCount(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetFollowingCount returns how many authors userID follows.
func (r *GormFollowRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure interface is satisfied at compile time.
var _ FollowRepository = (*GormFollowRepository)(nil)
