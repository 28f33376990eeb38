package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-blog/pkg/middleware"
	"github.com/weiawesome/wes-io-blog/pkg/response"
)

// Follow handles POST /api/v1/profiles/:username/follow.
// Following an already followed author succeeds without change.
func (h *Handler) Follow(c *gin.Context) {
	ctx := c.Request.Context()

	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.social.FollowByUsername(ctx, userID, c.Param("username")); err != nil {
		writeError(c, err, "failed to follow author")
		return
	}

	response.Success(c, gin.H{"following": true})
}

// Unfollow handles DELETE /api/v1/profiles/:username/follow.
func (h *Handler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()

	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.social.UnfollowByUsername(ctx, userID, c.Param("username")); err != nil {
		writeError(c, err, "failed to unfollow author")
		return
	}

	response.NoContent(c)
}
