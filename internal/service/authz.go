package service

import "github.com/weiawesome/wes-io-blog/internal/domain"

// CanEdit reports whether viewerID may edit or delete post.
// Anonymous viewers (empty id) never can.
func CanEdit(viewerID string, post *domain.Post) bool {
	return post != nil && viewerID != "" && viewerID == post.AuthorID
}
