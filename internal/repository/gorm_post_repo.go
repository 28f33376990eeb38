package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-blog/internal/domain"
)

const postOrder = "posts.created_at DESC, posts.id DESC"

// postRow is a post joined with its author and group.
type postRow struct {
	domain.PostModel
	AuthorUsername *string
	GroupSlug      *string
	GroupTitle     *string
}

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-backed post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Select("posts.*, users.username AS author_username, post_groups.slug AS group_slug, post_groups.title AS group_title").
		Joins("LEFT JOIN users ON users.id = posts.author_id").
		Joins("LEFT JOIN post_groups ON post_groups.id = posts.group_id")
}

func (r *GormPostRepository) list(db *gorm.DB) ([]domain.Post, error) {
	var rows []postRow
	if err := db.Order(postOrder).Scan(&rows).Error; err != nil {
		return nil, err
	}
	posts := make([]domain.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, rowToPost(&rows[i]))
	}
	return posts, nil
}

// Create inserts the post and fills in its id and creation time.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	model := domain.PostModel{
		Text:      post.Text,
		CreatedAt: post.CreatedAt,
		AuthorID:  post.AuthorID,
		GroupID:   post.GroupID,
		Image:     post.Image,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	post.ID = model.ID
	post.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormPostRepository) GetByID(ctx context.Context, id uint) (*domain.Post, error) {
	var rows []postRow
	if err := r.joined(ctx).Where("posts.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrPostNotFound
	}
	post := rowToPost(&rows[0])
	return &post, nil
}

// Update writes text, group and image. created_at and author never change.
func (r *GormPostRepository) Update(ctx context.Context, post *domain.Post) error {
	result := r.db.WithContext(ctx).
		Model(&domain.PostModel{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.PostModel{}).Where("id = ?", post.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPostNotFound
		}
	}
	return nil
}

func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.CommentModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.PostModel{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

func (r *GormPostRepository) ListAll(ctx context.Context) ([]domain.Post, error) {
	return r.list(r.joined(ctx))
}

func (r *GormPostRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	return r.list(r.joined(ctx).Where("posts.author_id = ?", authorID))
}

func (r *GormPostRepository) ListByGroup(ctx context.Context, groupID uint) ([]domain.Post, error) {
	return r.list(r.joined(ctx).Where("posts.group_id = ?", groupID))
}

// ListByAuthors returns posts by any of authorIDs in a single query.
func (r *GormPostRepository) ListByAuthors(ctx context.Context, authorIDs []string) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return []domain.Post{}, nil
	}
	return r.list(r.joined(ctx).Where("posts.author_id IN ?", authorIDs))
}

func (r *GormPostRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func rowToPost(row *postRow) domain.Post {
	post := domain.Post{
		ID:        row.ID,
		Text:      row.Text,
		CreatedAt: row.CreatedAt,
		AuthorID:  row.AuthorID,
		GroupID:   row.GroupID,
		Image:     row.Image,
	}
	if row.AuthorUsername != nil {
		post.AuthorUsername = *row.AuthorUsername
	}
	if row.GroupSlug != nil {
		post.GroupSlug = *row.GroupSlug
	}
	if row.GroupTitle != nil {
		post.GroupTitle = *row.GroupTitle
	}
	return post
}

var _ PostRepository = (*GormPostRepository)(nil)
