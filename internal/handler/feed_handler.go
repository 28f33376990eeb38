package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-blog/internal/domain"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
	"github.com/weiawesome/wes-io-blog/pkg/middleware"
	"github.com/weiawesome/wes-io-blog/pkg/response"
)

// HomePage handles GET /api/v1/posts.
func (h *Handler) HomePage(c *gin.Context) {
	ctx := c.Request.Context()

	posts, err := h.feed.HomeTimeline(ctx)
	if err != nil {
		writeError(c, err, "failed to load timeline")
		return
	}

	response.Success(c, h.pageResponse(ctx, posts, c.Query("page")))
}

// GroupPage handles GET /api/v1/groups/:slug/posts.
func (h *Handler) GroupPage(c *gin.Context) {
	ctx := c.Request.Context()

	group, posts, err := h.feed.GroupTimeline(ctx, c.Param("slug"))
	if err != nil {
		writeError(c, err, "failed to load group")
		return
	}

	response.Success(c, domain.GroupPageResponse{
		Group: groupResponse(*group),
		Page:  h.pageResponse(ctx, posts, c.Query("page")),
	})
}

// ProfilePage handles GET /api/v1/profiles/:username.
func (h *Handler) ProfilePage(c *gin.Context) {
	ctx := c.Request.Context()

	profile, err := h.feed.Profile(ctx, middleware.GetUserID(c), c.Param("username"))
	if err != nil {
		writeError(c, err, "failed to load profile")
		return
	}

	response.Success(c, h.profileResponse(ctx, profile, c.Query("page")))
}

// FollowPage handles GET /api/v1/follow.
func (h *Handler) FollowPage(c *gin.Context) {
	ctx := c.Request.Context()

	posts, err := h.feed.FollowingTimeline(ctx, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "failed to load following feed")
		return
	}

	response.Success(c, h.pageResponse(ctx, posts, c.Query("page")))
}

// InvalidateTimeline handles POST /api/v1/admin/cache/timeline/invalidate.
func (h *Handler) InvalidateTimeline(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	h.feed.InvalidateHomeTimeline(ctx, middleware.GetUserID(c))
	l.Info().Msg("home timeline cache invalidated")

	response.Success(c, gin.H{"message": "timeline cache invalidated"})
}
