package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-blog/internal/service"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
	"github.com/weiawesome/wes-io-blog/pkg/middleware"
	"github.com/weiawesome/wes-io-blog/pkg/response"
)

const roleAdmin = "admin"

// Handler handles HTTP requests for the blog.
type Handler struct {
	feed           service.FeedService
	social         service.SocialGraphService
	posts          service.PostService
	groups         service.GroupService
	authMiddleware *middleware.AuthMiddleware
	writeLimiter   *middleware.IPRateLimiter
	pageSize       int
}

// Options carries the handler's tunables.
type Options struct {
	PageSize     int
	WriteLimiter *middleware.IPRateLimiter // nil disables write rate limiting
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	feed service.FeedService,
	social service.SocialGraphService,
	posts service.PostService,
	groups service.GroupService,
	authMiddleware *middleware.AuthMiddleware,
	opts Options,
) *Handler {
	return &Handler{
		feed:           feed,
		social:         social,
		posts:          posts,
		groups:         groups,
		authMiddleware: authMiddleware,
		writeLimiter:   opts.WriteLimiter,
		pageSize:       opts.PageSize,
	}
}

// RegisterRoutes registers all routes onto the Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	optional := h.authMiddleware.OptionalAuth()
	required := h.authMiddleware.RequireAuth()
	adminOnly := middleware.RequireRole(roleAdmin)
	write := h.writeGuard()

	api := r.Group("/api/v1")
	{
		api.GET("/posts", optional, h.HomePage)
		api.POST("/posts", required, write, h.CreatePost)

		groups := api.Group("/groups")
		{
			groups.GET("", h.ListGroups)
			groups.POST("", required, adminOnly, h.CreateGroup)
			groups.DELETE("/:slug", required, adminOnly, h.DeleteGroup)
			groups.GET("/:slug/posts", optional, h.GroupPage)
		}

		api.GET("/follow", required, h.FollowPage)

		profiles := api.Group("/profiles/:username")
		{
			profiles.GET("", optional, h.ProfilePage)
			profiles.POST("/follow", required, write, h.Follow)
			profiles.DELETE("/follow", required, write, h.Unfollow)

			profiles.GET("/posts/:post_id", optional, h.PostDetail)
			profiles.PUT("/posts/:post_id", required, write, h.UpdatePost)
			profiles.DELETE("/posts/:post_id", required, write, h.DeletePost)
			profiles.POST("/posts/:post_id/comments", required, write, h.AddComment)
			profiles.DELETE("/posts/:post_id/comments/:comment_id", required, write, h.DeleteComment)
		}

		api.POST("/admin/cache/timeline/invalidate", required, adminOnly, h.InvalidateTimeline)
	}
}

func (h *Handler) writeGuard() gin.HandlerFunc {
	if h.writeLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return h.writeLimiter.Middleware()
}

// postLocation is the canonical read view of a post.
func postLocation(username string, postID uint) string {
	return fmt.Sprintf("/api/v1/profiles/%s/posts/%d", username, postID)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c, name+" not found")
		return 0, false
	}
	return uint(id), true
}

// writeError maps service errors onto responses. Unexpected errors are
// logged and surface as 500 with msg. ErrForbidden never reaches here:
// post and comment mutations answer it with a redirect, and admin routes
// are refused by RequireRole.
func writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrSelfFollow):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrGroupHasPosts),
		errors.Is(err, service.ErrSlugTaken):
		response.Conflict(c, err.Error())
	default:
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Str(pkglog.FieldPath, c.FullPath()).Msg(msg)
		response.InternalError(c, msg)
	}
}
