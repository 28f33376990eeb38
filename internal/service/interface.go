package service

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-blog/internal/consumer"
	"github.com/weiawesome/wes-io-blog/internal/domain"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrGroupHasPosts   = errors.New("group still has posts")
	ErrSlugTaken       = errors.New("group slug already taken")
	ErrSelfFollow      = errors.New("cannot follow yourself")
)

// SocialGraphService manages who follows whom.
type SocialGraphService interface {
	// Follow is a no-op when the pair already exists.
	Follow(ctx context.Context, userID, authorID string) error
	// Unfollow is a no-op when the pair does not exist.
	Unfollow(ctx context.Context, userID, authorID string) error
	IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
	FollowedAuthors(ctx context.Context, userID string) ([]string, error)
	FollowByUsername(ctx context.Context, userID, username string) error
	UnfollowByUsername(ctx context.Context, userID, username string) error
	GetFollowersCount(ctx context.Context, authorID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
	HandleCDCEvent(ctx context.Context, event *consumer.DebeziumMessage) error
}

// FeedService assembles the post sequences each page shows.
// Sequences are newest first and unpaginated.
type FeedService interface {
	HomeTimeline(ctx context.Context) ([]domain.Post, error)
	GroupTimeline(ctx context.Context, slug string) (*domain.Group, []domain.Post, error)
	ProfileTimeline(ctx context.Context, username string) (*domain.User, []domain.Post, error)
	FollowingTimeline(ctx context.Context, userID string) ([]domain.Post, error)
	// Profile loads everything the profile page shows for viewerID.
	Profile(ctx context.Context, viewerID, username string) (*Profile, error)
	// InvalidateHomeTimeline drops the cached home timeline.
	InvalidateHomeTimeline(ctx context.Context, actorID string)
}

// PostService handles post and comment reads and writes.
// Posts are addressed by author username and id; a mismatch is ErrPostNotFound.
type PostService interface {
	GetPost(ctx context.Context, username string, postID uint) (*domain.Post, error)
	ListComments(ctx context.Context, postID uint) ([]domain.Comment, error)
	CreatePost(ctx context.Context, authorID string, req *domain.CreatePostRequest, image *domain.ImageUpload) (*domain.Post, error)
	UpdatePost(ctx context.Context, viewerID, username string, postID uint, req *domain.UpdatePostRequest, image *domain.ImageUpload) (*domain.Post, error)
	DeletePost(ctx context.Context, viewerID, username string, postID uint) error
	AddComment(ctx context.Context, viewerID, username string, postID uint, text string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, viewerID, username string, postID, commentID uint) error
	// ImageURL resolves a stored image key; empty when there is none.
	ImageURL(ctx context.Context, key string) string
}

// GroupService manages groups.
type GroupService interface {
	ListGroups(ctx context.Context) ([]domain.Group, error)
	CreateGroup(ctx context.Context, actorID string, req *domain.CreateGroupRequest) (*domain.Group, error)
	DeleteGroup(ctx context.Context, actorID, slug string) error
}

// IdentityService mirrors authenticated identities into local storage.
type IdentityService interface {
	ObserveViewer(ctx context.Context, userID, username string) error
}

// Profile is the data behind a profile page.
type Profile struct {
	Author    domain.User
	Posts     []domain.Post
	Following bool
	Counts    domain.ProfileCounts
}
