package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-blog/internal/domain"
)

func TestCanEdit(t *testing.T) {
	post := &domain.Post{ID: 1, AuthorID: "a1"}

	tests := []struct {
		name   string
		viewer string
		post   *domain.Post
		want   bool
	}{
		{"author", "a1", post, true},
		{"other user", "u2", post, false},
		{"anonymous", "", post, false},
		{"anonymous on authorless post", "", &domain.Post{}, false},
		{"nil post", "a1", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEdit(tt.viewer, tt.post))
		})
	}
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "a1", "writer")
	g := f.group(t, "cats")

	post, err := f.postSvc.CreatePost(ctx, "a1", &domain.CreatePostRequest{Text: "  hello  ", GroupID: &g.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Text)
	assert.Equal(t, "writer", post.AuthorUsername)
	assert.Equal(t, "cats", post.GroupSlug)
	assert.False(t, post.CreatedAt.IsZero())

	_, err = f.postSvc.CreatePost(ctx, "a1", &domain.CreatePostRequest{Text: "   "}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	missing := uint(999)
	_, err = f.postSvc.CreatePost(ctx, "a1", &domain.CreatePostRequest{Text: "x", GroupID: &missing}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreatePostWithImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "a1", "writer")

	upload := &domain.ImageUpload{
		Filename:    "Cat.GIF",
		ContentType: "image/gif",
		Size:        6,
		Body:        strings.NewReader("GIF89a"),
	}
	post, err := f.postSvc.CreatePost(ctx, "a1", &domain.CreatePostRequest{Text: "with image"}, upload)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(post.Image, "posts/"))
	assert.True(t, strings.HasSuffix(post.Image, ".gif"))

	ok, err := f.images.Exists(ctx, post.Image)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/media/"+post.Image, f.postSvc.ImageURL(ctx, post.Image))
	assert.Empty(t, f.postSvc.ImageURL(ctx, ""))

	notImage := &domain.ImageUpload{Filename: "a.txt", ContentType: "text/plain", Size: 1, Body: strings.NewReader("x")}
	_, err = f.postSvc.CreatePost(ctx, "a1", &domain.CreatePostRequest{Text: "x"}, notImage)
	assert.ErrorIs(t, err, ErrValidation)

	tooBig := &domain.ImageUpload{Filename: "a.png", ContentType: "image/png", Size: 4096, Body: strings.NewReader("x")}
	_, err = f.postSvc.CreatePost(ctx, "a1", &domain.CreatePostRequest{Text: "x"}, tooBig)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.postSvc.DeletePost(ctx, "a1", "writer", post.ID))
	ok, err = f.images.Exists(ctx, post.Image)
	require.NoError(t, err)
	assert.False(t, ok, "image removed with its post")
}

func TestImagesDisabled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "a1", "writer")
	svc := NewPostService(f.posts, f.comments, f.groups, nil, PostOptions{})

	upload := &domain.ImageUpload{Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")}
	_, err := svc.CreatePost(ctx, "a1", &domain.CreatePostRequest{Text: "x"}, upload)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetPostChecksAuthorUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "a1", "writer")
	f.user(t, "a2", "other")
	p := f.post(t, "a1", "text", nil, time.Time{})

	got, err := f.postSvc.GetPost(ctx, "writer", p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.postSvc.GetPost(ctx, "other", p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.postSvc.GetPost(ctx, "writer", 12345)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "a1", "writer")
	f.user(t, "u2", "intruder")
	g := f.group(t, "dogs")
	p := f.post(t, "a1", "before", nil, time.Time{})

	_, err := f.postSvc.UpdatePost(ctx, "u2", "writer", p.ID, &domain.UpdatePostRequest{Text: "hacked"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.postSvc.UpdatePost(ctx, "", "writer", p.ID, &domain.UpdatePostRequest{Text: "hacked"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.postSvc.UpdatePost(ctx, "a1", "writer", p.ID, &domain.UpdatePostRequest{Text: "after", GroupID: &g.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Text)
	assert.Equal(t, "dogs", updated.GroupSlug)
	assert.True(t, p.CreatedAt.Equal(updated.CreatedAt))

	upload := &domain.ImageUpload{Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")}
	withImage, err := f.postSvc.UpdatePost(ctx, "a1", "writer", p.ID, &domain.UpdatePostRequest{Text: "after"}, upload)
	require.NoError(t, err)
	require.NotEmpty(t, withImage.Image)
	assert.Nil(t, withImage.GroupID)

	cleared, err := f.postSvc.UpdatePost(ctx, "a1", "writer", p.ID, &domain.UpdatePostRequest{Text: "after", RemoveImage: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Image)
	ok, err := f.images.Exists(ctx, withImage.Image)
	require.NoError(t, err)
	assert.False(t, ok, "replaced image is removed")
}

func TestDeletePostCascadesComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "a1", "writer")
	f.user(t, "u2", "reader")
	p := f.post(t, "a1", "text", nil, time.Time{})

	_, err := f.postSvc.AddComment(ctx, "u2", "writer", p.ID, "nice")
	require.NoError(t, err)

	assert.ErrorIs(t, f.postSvc.DeletePost(ctx, "u2", "writer", p.ID), ErrForbidden)
	require.NoError(t, f.postSvc.DeletePost(ctx, "a1", "writer", p.ID))

	var remaining int64
	require.NoError(t, f.db.Model(&domain.CommentModel{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	assert.ErrorIs(t, f.postSvc.DeletePost(ctx, "a1", "writer", p.ID), ErrPostNotFound)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "a1", "writer")
	f.user(t, "u2", "reader")
	f.user(t, "u3", "bystander")
	p := f.post(t, "a1", "text", nil, time.Time{})

	_, err := f.postSvc.AddComment(ctx, "u2", "writer", p.ID, " ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.postSvc.AddComment(ctx, "u2", "writer", p.ID, strings.Repeat("я", 1001))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.postSvc.AddComment(ctx, "u2", "reader", p.ID, "wrong author in url")
	assert.ErrorIs(t, err, ErrPostNotFound)

	first, err := f.postSvc.AddComment(ctx, "u2", "writer", p.ID, strings.Repeat("я", 1000))
	require.NoError(t, err)
	assert.Equal(t, "reader", first.AuthorUsername)
	second, err := f.postSvc.AddComment(ctx, "u3", "writer", p.ID, "second")
	require.NoError(t, err)

	comments, err := f.postSvc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID, "oldest first")

	assert.ErrorIs(t, f.postSvc.DeleteComment(ctx, "u3", "writer", p.ID, first.ID), ErrForbidden)
	assert.ErrorIs(t, f.postSvc.DeleteComment(ctx, "u2", "writer", p.ID, 999), ErrCommentNotFound)
	require.NoError(t, f.postSvc.DeleteComment(ctx, "u2", "writer", p.ID, first.ID), "comment author may delete")
	require.NoError(t, f.postSvc.DeleteComment(ctx, "a1", "writer", p.ID, second.ID), "post author may delete")

	comments, err = f.postSvc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
