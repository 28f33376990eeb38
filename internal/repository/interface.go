package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-blog/internal/domain"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrSlugTaken       = errors.New("group slug already taken")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrGroupHasPosts   = errors.New("group still has posts")
)

// PostRepository defines persistence operations for posts.
// Every list is ordered by created_at DESC, id DESC.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uint) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	// Delete removes the post and its comments in one transaction.
	Delete(ctx context.Context, id uint) error
	ListAll(ctx context.Context) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)
	ListByGroup(ctx context.Context, groupID uint) ([]domain.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []string) ([]domain.Post, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
}

// GroupRepository defines persistence operations for groups.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetBySlug(ctx context.Context, slug string) (*domain.Group, error)
	GetByID(ctx context.Context, id uint) (*domain.Group, error)
	List(ctx context.Context) ([]domain.Group, error)
	// Delete fails with ErrGroupHasPosts while any post references the group.
	Delete(ctx context.Context, id uint) error
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uint) (*domain.Comment, error)
	// ListByPost returns comments oldest first.
	ListByPost(ctx context.Context, postID uint) ([]domain.Comment, error)
	Delete(ctx context.Context, id uint) error
}

// FollowRepository defines persistence operations for follow relationships.
type FollowRepository interface {
	// Follow reports whether a new row was created.
	Follow(ctx context.Context, userID, authorID string) (bool, error)
	// Unfollow reports whether a row was removed.
	Unfollow(ctx context.Context, userID, authorID string) (bool, error)
	IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
	FollowedAuthors(ctx context.Context, userID string) ([]string, error)
	GetFollowersCount(ctx context.Context, authorID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
}

// UserRepository defines persistence operations for mirrored identities.
type UserRepository interface {
	// Ensure inserts the user or refreshes its username.
	Ensure(ctx context.Context, id, username string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
