package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-blog/internal/domain"
	"github.com/weiawesome/wes-io-blog/internal/service"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
	"github.com/weiawesome/wes-io-blog/pkg/middleware"
	"github.com/weiawesome/wes-io-blog/pkg/response"
)

const imageField = "image"

// PostDetail handles GET /api/v1/profiles/:username/posts/:post_id.
func (h *Handler) PostDetail(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	postID, ok := parseID(c, "post_id")
	if !ok {
		return
	}

	post, err := h.posts.GetPost(ctx, username, postID)
	if err != nil {
		writeError(c, err, "failed to load post")
		return
	}

	comments, err := h.posts.ListComments(ctx, postID)
	if err != nil {
		writeError(c, err, "failed to load comments")
		return
	}

	viewerID := middleware.GetUserID(c)
	following, err := h.social.IsFollowing(ctx, viewerID, post.AuthorID)
	if err != nil {
		writeError(c, err, "failed to load post")
		return
	}

	out := make([]domain.CommentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, commentResponse(cm))
	}

	response.Success(c, domain.PostDetailResponse{
		Post:      h.postResponse(ctx, *post),
		Comments:  out,
		Following: following,
		CanEdit:   service.CanEdit(viewerID, post),
	})
}

// CreatePost handles POST /api/v1/posts. Accepts JSON, or multipart with an
// optional "image" file.
func (h *Handler) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	var req domain.CreatePostRequest
	if err := bindPost(c, &req); err != nil {
		l.Warn().Err(err).Msg("invalid create post request")
		response.BadRequest(c, err.Error())
		return
	}
	req.GroupID = normaliseGroup(req.GroupID)

	image, cleanup, err := formImage(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer cleanup()

	post, err := h.posts.CreatePost(ctx, middleware.GetUserID(c), &req, image)
	if err != nil {
		writeError(c, err, "failed to create post")
		return
	}

	response.Created(c, postLocation(post.AuthorUsername, post.ID), h.postResponse(ctx, *post))
}

// UpdatePost handles PUT /api/v1/profiles/:username/posts/:post_id.
// Viewers other than the author are redirected to the post view.
func (h *Handler) UpdatePost(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)
	username := c.Param("username")

	postID, ok := parseID(c, "post_id")
	if !ok {
		return
	}

	var req domain.UpdatePostRequest
	if err := bindPost(c, &req); err != nil {
		l.Warn().Err(err).Msg("invalid update post request")
		response.BadRequest(c, err.Error())
		return
	}
	req.GroupID = normaliseGroup(req.GroupID)

	image, cleanup, err := formImage(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer cleanup()

	post, err := h.posts.UpdatePost(ctx, middleware.GetUserID(c), username, postID, &req, image)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.SeeOther(c, postLocation(username, postID))
			return
		}
		writeError(c, err, "failed to update post")
		return
	}

	response.Success(c, h.postResponse(ctx, *post))
}

// DeletePost handles DELETE /api/v1/profiles/:username/posts/:post_id.
func (h *Handler) DeletePost(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	postID, ok := parseID(c, "post_id")
	if !ok {
		return
	}

	if err := h.posts.DeletePost(ctx, middleware.GetUserID(c), username, postID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.SeeOther(c, postLocation(username, postID))
			return
		}
		writeError(c, err, "failed to delete post")
		return
	}

	response.NoContent(c)
}

// AddComment handles POST /api/v1/profiles/:username/posts/:post_id/comments.
func (h *Handler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	postID, ok := parseID(c, "post_id")
	if !ok {
		return
	}

	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid comment request")
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.posts.AddComment(ctx, middleware.GetUserID(c), c.Param("username"), postID, req.Text)
	if err != nil {
		writeError(c, err, "failed to add comment")
		return
	}

	response.Created(c, "", commentResponse(*comment))
}

// DeleteComment handles DELETE /api/v1/profiles/:username/posts/:post_id/comments/:comment_id.
func (h *Handler) DeleteComment(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	postID, ok := parseID(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}

	if err := h.posts.DeleteComment(ctx, middleware.GetUserID(c), username, postID, commentID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.SeeOther(c, postLocation(username, postID))
			return
		}
		writeError(c, err, "failed to delete comment")
		return
	}

	response.NoContent(c)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func bindPost(c *gin.Context, dst interface{}) error {
	if isMultipart(c) {
		return c.ShouldBind(dst)
	}
	return c.ShouldBindJSON(dst)
}

// normaliseGroup treats an empty form value (parsed as 0) as no group.
func normaliseGroup(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

// formImage opens the optional uploaded image. cleanup is always safe to call.
func formImage(c *gin.Context) (*domain.ImageUpload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, nil
	}

	fh, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}

	return &domain.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { f.Close() }, nil
}
