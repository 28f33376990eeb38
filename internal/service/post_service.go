package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/weiawesome/wes-io-blog/internal/audit"
	"github.com/weiawesome/wes-io-blog/internal/domain"
	"github.com/weiawesome/wes-io-blog/internal/metrics"
	"github.com/weiawesome/wes-io-blog/internal/repository"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
	"github.com/weiawesome/wes-io-blog/pkg/storage"
)

const (
	maxCommentLength = 1000
	imageKeyPrefix   = "posts/"
)

// PostOptions tunes PostService.
type PostOptions struct {
	MaxImageBytes int64
	ImageURLTTL   time.Duration
}

// postService implements PostService.
type postService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	groups   repository.GroupRepository
	images   storage.Storage // nil disables image uploads
	opts     PostOptions
}

// NewPostService creates a new PostService instance.
func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	groups repository.GroupRepository,
	images storage.Storage,
	opts PostOptions,
) PostService {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 5 << 20
	}
	if opts.ImageURLTTL <= 0 {
		opts.ImageURLTTL = time.Hour
	}
	return &postService{
		posts:    posts,
		comments: comments,
		groups:   groups,
		images:   images,
		opts:     opts,
	}
}

// GetPost returns the post with postID if it was written by username.
func (s *postService) GetPost(ctx context.Context, username string, postID uint) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to get post")
		return nil, err
	}
	if post.AuthorUsername != username {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) ListComments(ctx context.Context, postID uint) ([]domain.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

func (s *postService) CreatePost(ctx context.Context, authorID string, req *domain.CreatePostRequest, image *domain.ImageUpload) (*domain.Post, error) {
	l := pkglog.Ctx(ctx)

	text, err := s.validatePost(ctx, req.Text, req.GroupID)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Text:     text,
		AuthorID: authorID,
		GroupID:  req.GroupID,
	}

	if image != nil {
		key, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		post.Image = key
	}

	if err := s.posts.Create(ctx, post); err != nil {
		l.Error().Err(err).Str(pkglog.FieldAuthorID, authorID).Msg("failed to create post")
		s.removeImage(ctx, post.Image)
		return nil, err
	}

	metrics.PostWrites.WithLabelValues(metrics.OpCreate).Inc()
	audit.Log(ctx, audit.ActionPostCreate, authorID, fmt.Sprint(post.ID), "post created")

	return s.reload(ctx, post.ID)
}

func (s *postService) UpdatePost(ctx context.Context, viewerID, username string, postID uint, req *domain.UpdatePostRequest, image *domain.ImageUpload) (*domain.Post, error) {
	l := pkglog.Ctx(ctx)

	post, err := s.GetPost(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if !CanEdit(viewerID, post) {
		audit.Log(ctx, audit.ActionPostEditDenied, viewerID, fmt.Sprint(postID), "post edit refused")
		return nil, ErrForbidden
	}

	text, err := s.validatePost(ctx, req.Text, req.GroupID)
	if err != nil {
		return nil, err
	}

	oldImage := post.Image
	post.Text = text
	post.GroupID = req.GroupID
	if req.RemoveImage {
		post.Image = ""
	}
	if image != nil {
		key, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		post.Image = key
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if post.Image != oldImage {
			s.removeImage(ctx, post.Image)
		}
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to update post")
		return nil, err
	}
	if oldImage != post.Image {
		s.removeImage(ctx, oldImage)
	}

	metrics.PostWrites.WithLabelValues(metrics.OpUpdate).Inc()
	audit.Log(ctx, audit.ActionPostUpdate, viewerID, fmt.Sprint(postID), "post updated")

	return s.reload(ctx, postID)
}

// DeletePost removes the post, its comments and its image.
func (s *postService) DeletePost(ctx context.Context, viewerID, username string, postID uint) error {
	l := pkglog.Ctx(ctx)

	post, err := s.GetPost(ctx, username, postID)
	if err != nil {
		return err
	}
	if !CanEdit(viewerID, post) {
		audit.Log(ctx, audit.ActionPostEditDenied, viewerID, fmt.Sprint(postID), "post delete refused")
		return ErrForbidden
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to delete post")
		return err
	}
	s.removeImage(ctx, post.Image)

	metrics.PostWrites.WithLabelValues(metrics.OpDelete).Inc()
	audit.Log(ctx, audit.ActionPostDelete, viewerID, fmt.Sprint(postID), "post deleted")
	return nil
}

func (s *postService) AddComment(ctx context.Context, viewerID, username string, postID uint, text string) (*domain.Comment, error) {
	l := pkglog.Ctx(ctx)

	if _, err := s.GetPost(ctx, username, postID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment is longer than %d characters", ErrValidation, maxCommentLength)
	}

	comment := &domain.Comment{
		PostID:   postID,
		AuthorID: viewerID,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to create comment")
		return nil, err
	}

	audit.Log(ctx, audit.ActionCommentCreate, viewerID, fmt.Sprint(postID), "comment added")

	created, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return comment, nil
	}
	return created, nil
}

// DeleteComment lets the comment's author or the post's author remove it.
func (s *postService) DeleteComment(ctx context.Context, viewerID, username string, postID, commentID uint) error {
	l := pkglog.Ctx(ctx)

	post, err := s.GetPost(ctx, username, postID)
	if err != nil {
		return err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.PostID != postID {
		return ErrCommentNotFound
	}
	if viewerID == "" || (comment.AuthorID != viewerID && !CanEdit(viewerID, post)) {
		return ErrForbidden
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		l.Error().Err(err).Uint(pkglog.FieldCommentID, commentID).Msg("failed to delete comment")
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionCommentDelete, viewerID, fmt.Sprint(postID), fmt.Sprint(commentID), "comment deleted")
	return nil
}

func (s *postService) ImageURL(ctx context.Context, key string) string {
	if key == "" || s.images == nil {
		return ""
	}
	url, err := s.images.GetURL(ctx, key, s.opts.ImageURLTTL)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldImageKey, key).Msg("failed to resolve image url")
		return ""
	}
	return url
}

func (s *postService) reload(ctx context.Context, postID uint) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) validatePost(ctx context.Context, text string, groupID *uint) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: post text is required", ErrValidation)
	}
	if groupID == nil {
		return text, nil
	}
	if _, err := s.groups.GetByID(ctx, *groupID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return "", fmt.Errorf("%w: group %d does not exist", ErrValidation, *groupID)
		}
		return "", err
	}
	return text, nil
}

func (s *postService) storeImage(ctx context.Context, image *domain.ImageUpload) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("%w: image uploads are disabled", ErrValidation)
	}
	if !strings.HasPrefix(image.ContentType, "image/") {
		return "", fmt.Errorf("%w: %q is not an image", ErrValidation, image.ContentType)
	}
	if image.Size > s.opts.MaxImageBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, s.opts.MaxImageBytes)
	}

	key := imageKeyPrefix + uuid.NewString() + strings.ToLower(path.Ext(image.Filename))
	if err := s.images.Write(ctx, key, image.Body, image.Size, image.ContentType); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldImageKey, key).Msg("failed to store image")
		return "", err
	}
	return key, nil
}

func (s *postService) removeImage(ctx context.Context, key string) {
	if key == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldImageKey, key).Msg("failed to delete image")
	}
}

var _ PostService = (*postService)(nil)
