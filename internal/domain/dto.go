package domain

import (
	"io"
	"time"
)

// CreatePostRequest is the JSON body for creating a post.
// Multipart requests carry the same fields as form values plus an "image" file.
type CreatePostRequest struct {
	Text    string `json:"text" form:"text"`
	GroupID *uint  `json:"group_id" form:"group_id"`
}

// UpdatePostRequest is the JSON body for editing a post.
type UpdatePostRequest struct {
	Text        string `json:"text" form:"text"`
	GroupID     *uint  `json:"group_id" form:"group_id"`
	RemoveImage bool   `json:"remove_image" form:"remove_image"`
}

// CreateCommentRequest is the JSON body for adding a comment.
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateGroupRequest is the JSON body for creating a group.
type CreateGroupRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
}

// ImageUpload is an image attached to a post create or edit.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GroupResponse is the public view of a group.
type GroupResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// PostResponse is the public view of a post.
type PostResponse struct {
	ID        uint           `json:"id"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"created_at"`
	Author    UserResponse   `json:"author"`
	Group     *GroupResponse `json:"group,omitempty"`
	ImageURL  string         `json:"image_url,omitempty"`
}

// CommentResponse is the public view of a comment.
type CommentResponse struct {
	ID        uint         `json:"id"`
	PostID    uint         `json:"post_id"`
	Author    UserResponse `json:"author"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
}

// PageResponse is one page of a post sequence.
type PageResponse struct {
	Items          []PostResponse `json:"items"`
	Number         int            `json:"number"`
	NumPages       int            `json:"num_pages"`
	Count          int            `json:"count"`
	HasNext        bool           `json:"has_next"`
	HasPrevious    bool           `json:"has_previous"`
	NextNumber     int            `json:"next_number,omitempty"`
	PreviousNumber int            `json:"previous_number,omitempty"`
}

// GroupPageResponse is the group page model.
type GroupPageResponse struct {
	Group GroupResponse `json:"group"`
	Page  PageResponse  `json:"page"`
}

// ProfileResponse is the profile page model.
type ProfileResponse struct {
	Author         UserResponse `json:"author"`
	Page           PageResponse `json:"page"`
	Following      bool         `json:"following"`
	PostsCount     int64        `json:"posts_count"`
	FollowersCount int64        `json:"followers_count"`
	FollowingCount int64        `json:"following_count"`
}

// PostDetailResponse is the post view model.
type PostDetailResponse struct {
	Post      PostResponse      `json:"post"`
	Comments  []CommentResponse `json:"comments"`
	Following bool              `json:"following"`
	CanEdit   bool              `json:"can_edit"`
}
