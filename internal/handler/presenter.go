package handler

import (
	"context"

	"github.com/weiawesome/wes-io-blog/internal/domain"
	"github.com/weiawesome/wes-io-blog/internal/pagination"
	"github.com/weiawesome/wes-io-blog/internal/service"
)

func (h *Handler) postResponse(ctx context.Context, p domain.Post) domain.PostResponse {
	resp := domain.PostResponse{
		ID:        p.ID,
		Text:      p.Text,
		CreatedAt: p.CreatedAt,
		Author:    domain.UserResponse{ID: p.AuthorID, Username: p.AuthorUsername},
		ImageURL:  h.posts.ImageURL(ctx, p.Image),
	}
	if p.GroupID != nil {
		resp.Group = &domain.GroupResponse{ID: *p.GroupID, Title: p.GroupTitle, Slug: p.GroupSlug}
	}
	return resp
}

func (h *Handler) pageResponse(ctx context.Context, posts []domain.Post, number string) domain.PageResponse {
	page := pagination.Map(pagination.Paginate(posts, h.pageSize, number), func(p domain.Post) domain.PostResponse {
		return h.postResponse(ctx, p)
	})
	return domain.PageResponse{
		Items:          page.Items,
		Number:         page.Number,
		NumPages:       page.NumPages,
		Count:          page.Count,
		HasNext:        page.HasNext(),
		HasPrevious:    page.HasPrevious(),
		NextNumber:     page.NextNumber(),
		PreviousNumber: page.PreviousNumber(),
	}
}

func groupResponse(g domain.Group) domain.GroupResponse {
	return domain.GroupResponse{ID: g.ID, Title: g.Title, Slug: g.Slug, Description: g.Description}
}

func userResponse(u domain.User) domain.UserResponse {
	return domain.UserResponse{ID: u.ID, Username: u.Username}
}

func commentResponse(c domain.Comment) domain.CommentResponse {
	return domain.CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    domain.UserResponse{ID: c.AuthorID, Username: c.AuthorUsername},
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func (h *Handler) profileResponse(ctx context.Context, p *service.Profile, number string) domain.ProfileResponse {
	return domain.ProfileResponse{
		Author:         userResponse(p.Author),
		Page:           h.pageResponse(ctx, p.Posts, number),
		Following:      p.Following,
		PostsCount:     p.Counts.Posts,
		FollowersCount: p.Counts.Followers,
		FollowingCount: p.Counts.Following,
	}
}
