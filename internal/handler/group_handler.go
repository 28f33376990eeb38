package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-blog/internal/domain"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
	"github.com/weiawesome/wes-io-blog/pkg/middleware"
	"github.com/weiawesome/wes-io-blog/pkg/response"
)

// ListGroups handles GET /api/v1/groups.
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list groups")
		return
	}

	out := make([]domain.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupResponse(g))
	}
	response.Success(c, out)
}

// CreateGroup handles POST /api/v1/groups.
func (h *Handler) CreateGroup(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	var req domain.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create group request")
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.groups.CreateGroup(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		writeError(c, err, "failed to create group")
		return
	}

	response.Created(c, "/api/v1/groups/"+group.Slug+"/posts", groupResponse(*group))
}

// DeleteGroup handles DELETE /api/v1/groups/:slug.
func (h *Handler) DeleteGroup(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.groups.DeleteGroup(ctx, middleware.GetUserID(c), c.Param("slug")); err != nil {
		writeError(c, err, "failed to delete group")
		return
	}

	response.NoContent(c)
}
