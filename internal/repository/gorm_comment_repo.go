package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-blog/internal/domain"
)

type commentRow struct {
	domain.CommentModel
	AuthorUsername *string
}

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-backed comment repository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("comments").
		Select("comments.*, users.username AS author_username").
		Joins("LEFT JOIN users ON users.id = comments.author_id")
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	postID := comment.PostID
	model := domain.CommentModel{
		PostID:    &postID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	comment.ID = model.ID
	comment.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormCommentRepository) GetByID(ctx context.Context, id uint) (*domain.Comment, error) {
	var rows []commentRow
	if err := r.joined(ctx).Where("comments.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrCommentNotFound
	}
	comment := rowToComment(&rows[0])
	return &comment, nil
}

func (r *GormCommentRepository) ListByPost(ctx context.Context, postID uint) ([]domain.Comment, error) {
	var rows []commentRow
	err := r.joined(ctx).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC, comments.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, rowToComment(&rows[i]))
	}
	return comments, nil
}

func (r *GormCommentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.CommentModel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func rowToComment(row *commentRow) domain.Comment {
	comment := domain.Comment{
		ID:        row.ID,
		AuthorID:  row.AuthorID,
		Text:      row.Text,
		CreatedAt: row.CreatedAt,
	}
	if row.PostID != nil {
		comment.PostID = *row.PostID
	}
	if row.AuthorUsername != nil {
		comment.AuthorUsername = *row.AuthorUsername
	}
	return comment
}

var _ CommentRepository = (*GormCommentRepository)(nil)
